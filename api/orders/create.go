package orders

import (
	"haya_server/api/cart"
	"haya_server/api/health"
	"haya_server/api/middleware"
	"haya_server/handling"
	"haya_server/lib"
	"haya_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CreateOrder handles POST /orders/create. The placement is all or nothing:
// either every line is reserved and the order exists, or nothing changed.
func (orm *OrderRoutesManager) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.OrderRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.order.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	// Link the order to the user when a valid token came along; guests
	// check out with a nil user id.
	var userId *uuid.UUID
	if claims, ok := middleware.GetClaimsFromContext(r.Context()); ok {
		userId = &claims.Sub
	}

	order, err := orm.orderService.PlaceOrder(r.Context(), body, userId)
	if err != nil {
		health.OrdersRejected.WithLabelValues(string(lib.AsAppError(err).Code)).Inc()
		handling.HandleError(err, "order placement failed", orm.logger, w)
		return
	}

	health.OrdersPlaced.Inc()

	// The cart served its purpose; clear it for clients that keep one
	// server-side. A definitive success is the only path that clears.
	if session := cart.SessionFromRequest(r); session != "" {
		if store, err := orm.cartService.ForSession(r.Context(), session); err == nil {
			if err := store.Clear(r.Context()); err != nil {
				orm.logger.Warn("Failed to clear cart after order",
					gecho.Field("error", err),
					gecho.Field("order_number", order.OrderNumber))
			}
		}
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.created"),
		gecho.WithData(map[string]any{
			"order_number": order.OrderNumber,
			"order_id":     order.Id,
			"status":       order.Status,
			"total":        order.TotalAmount,
			"lines":        order.Lines,
		}),
		gecho.Send(),
	)
}

// GetOrderByNumber handles GET /orders/number/{orderNumber}. The order
// number acts as the lookup capability so guests can track their order.
func (orm *OrderRoutesManager) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	orderNumber := lib.SanitizeString(chi.URLParam(r, "orderNumber"), true, false)
	if orderNumber == "" {
		gecho.BadRequest(w,
			gecho.WithMessage("error.order.orderNumberRequired"),
			gecho.Send(),
		)
		return
	}

	order, err := orm.orderService.GetOrderByNumber(r.Context(), orderNumber)
	if err != nil {
		handling.HandleError(err, "failed to fetch order", orm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"order": order,
		}),
		gecho.Send(),
	)
}
