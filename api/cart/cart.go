package cart

import (
	"haya_server/handling"
	"haya_server/lib"
	"haya_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// GetCart handles GET /cart
func (crm *CartRoutesManager) GetCart(w http.ResponseWriter, r *http.Request) {
	store, err := crm.cartService.ForSession(r.Context(), crm.session(w, r))
	if err != nil {
		handling.HandleError(err, "failed to load cart", crm.logger, w)
		return
	}

	lines := store.Lines()
	gecho.Success(w,
		gecho.WithData(map[string]any{
			"lines": lines,
			"count": len(lines),
			"total": store.Total(),
		}),
		gecho.Send(),
	)
}

// AddItem handles POST /cart/items. Adding an already-present variant merges
// quantities instead of creating a second line.
func (crm *CartRoutesManager) AddItem(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.CartLine](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.cart.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	store, err := crm.cartService.ForSession(r.Context(), crm.session(w, r))
	if err != nil {
		handling.HandleError(err, "failed to load cart", crm.logger, w)
		return
	}

	if err := store.AddLine(r.Context(), *body); err != nil {
		handling.HandleError(err, "failed to add cart line", crm.logger, w)
		return
	}

	lines := store.Lines()
	gecho.Success(w,
		gecho.WithMessage("success.cart.itemAdded"),
		gecho.WithData(map[string]any{
			"lines": lines,
			"count": len(lines),
			"total": store.Total(),
		}),
		gecho.Send(),
	)
}

// RemoveItem handles DELETE /cart/items; the body names the variant to drop.
func (crm *CartRoutesManager) RemoveItem(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.VariantKey](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.cart.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	store, err := crm.cartService.ForSession(r.Context(), crm.session(w, r))
	if err != nil {
		handling.HandleError(err, "failed to load cart", crm.logger, w)
		return
	}

	if err := store.RemoveLine(r.Context(), *body); err != nil {
		handling.HandleError(err, "failed to remove cart line", crm.logger, w)
		return
	}

	lines := store.Lines()
	gecho.Success(w,
		gecho.WithMessage("success.cart.itemRemoved"),
		gecho.WithData(map[string]any{
			"lines": lines,
			"count": len(lines),
			"total": store.Total(),
		}),
		gecho.Send(),
	)
}

// ReconcileCart handles POST /cart/reconcile. It revalidates every line
// against the live catalog, pruning dead lines and refreshing stale prices.
func (crm *CartRoutesManager) ReconcileCart(w http.ResponseWriter, r *http.Request) {
	store, err := crm.cartService.ForSession(r.Context(), crm.session(w, r))
	if err != nil {
		handling.HandleError(err, "failed to load cart", crm.logger, w)
		return
	}

	result, err := store.Reconcile(r.Context())
	if err != nil {
		handling.HandleError(err, "failed to reconcile cart", crm.logger, w)
		return
	}

	if result.Changed {
		crm.logger.Info("Cart reconciled with changes",
			gecho.Field("removed", len(result.Removed)),
			gecho.Field("remaining", len(result.Lines)))
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"lines":   result.Lines,
			"removed": result.Removed,
			"changed": result.Changed,
			"total":   store.Total(),
		}),
		gecho.Send(),
	)
}

// ClearCart handles DELETE /cart
func (crm *CartRoutesManager) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, err := crm.cartService.ForSession(r.Context(), crm.session(w, r))
	if err != nil {
		handling.HandleError(err, "failed to load cart", crm.logger, w)
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		handling.HandleError(err, "failed to clear cart", crm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.cart.cleared"),
		gecho.Send(),
	)
}
