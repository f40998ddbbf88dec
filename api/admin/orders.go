package admin

import (
	"haya_server/handling"
	"haya_server/lib"
	"haya_server/structs/tables"
	"net/http"
	"strconv"

	"github.com/MonkyMars/gecho"
)

// ListOrders handles GET /admin/orders with pagination, newest first.
func (ar *AdminRoutesManager) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	result, err := ar.orderService.GetAllOrders(r.Context(), page, pageSize)
	if err != nil {
		handling.HandleError(err, "failed to list orders", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"orders":     result.Data,
			"pagination": result.Pagination,
		}),
		gecho.Send(),
	)
}

// GetOrderDetails handles GET /admin/orders/{id}
func (ar *AdminRoutesManager) GetOrderDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	order, err := ar.orderService.GetOrderById(r.Context(), id)
	if err != nil {
		handling.HandleError(err, "failed to fetch order", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{"order": order}),
		gecho.Send(),
	)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// UpdateOrderStatus handles PUT /admin/orders/{id}/status. The service
// enforces the linear progression; skipping a step or leaving a terminal
// state comes back as a conflict.
func (ar *AdminRoutesManager) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[UpdateOrderStatusRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.order.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	order, err := ar.orderService.UpdateOrderStatus(r.Context(), id, tables.OrderStatus(body.Status))
	if err != nil {
		handling.HandleError(err, "failed to update order status", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.order.statusUpdated"),
		gecho.WithData(map[string]any{
			"order_number": order.OrderNumber,
			"status":       order.Status,
		}),
		gecho.Send(),
	)
}
