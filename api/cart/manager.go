package cart

import (
	"haya_server/lib"
	"haya_server/services"
	"net/http"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionHeader carries the cart session id. Clients that cannot set
// headers fall back to the session cookie.
const (
	SessionHeader = "X-Cart-Session"
	SessionCookie = "haya_cart_session"
)

type CartRoutesManager struct {
	logger      *gecho.Logger
	cartService *services.CartService
}

func NewCartRoutesManager(logger *gecho.Logger, cartService *services.CartService) *CartRoutesManager {
	return &CartRoutesManager{
		logger:      logger,
		cartService: cartService,
	}
}

func (crm *CartRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", crm.GetCart)
		r.Post("/items", crm.AddItem)
		r.Delete("/items", crm.RemoveItem)
		r.Post("/reconcile", crm.ReconcileCart)
		r.Delete("/", crm.ClearCart)
	})
}

// SessionFromRequest returns the cart session id the request carries, from
// the header first and the cookie second, or "" when the client has none.
func SessionFromRequest(r *http.Request) string {
	if s := r.Header.Get(SessionHeader); s != "" {
		return s
	}
	if s, err := lib.GetCookieValue(SessionCookie, r); err == nil && s != "" {
		return s
	}
	return ""
}

// session resolves the cart session id, minting one when the client has
// none yet. A fresh id is handed back via cookie so subsequent requests
// stick to the same cart.
func (crm *CartRoutesManager) session(w http.ResponseWriter, r *http.Request) string {
	if s := SessionFromRequest(r); s != "" {
		return s
	}

	s := uuid.NewString()
	lib.SetCookie(SessionCookie, s, time.Now().Add(30*24*time.Hour), w)
	w.Header().Set(SessionHeader, s)
	return s
}
