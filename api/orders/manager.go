package orders

import (
	"haya_server/api/middleware"
	"haya_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type OrderRoutesManager struct {
	logger       *gecho.Logger
	orderService *services.OrderService
	cartService  *services.CartService
	mw           *middleware.Middleware
}

func NewOrderRoutesManager(
	logger *gecho.Logger,
	orderService *services.OrderService,
	cartService *services.CartService,
	mw *middleware.Middleware,
) *OrderRoutesManager {
	return &OrderRoutesManager{
		logger:       logger,
		orderService: orderService,
		cartService:  cartService,
		mw:           mw,
	}
}

func (orm *OrderRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(orm.mw.OptionalUserMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(orm.mw.StrictRateLimitMiddleware(
				orm.mw.Config().RateLimit.OrderLimit,
				orm.mw.Config().RateLimit.OrderWindow,
			))
			r.Post("/create", orm.CreateOrder)
		})

		r.Get("/number/{orderNumber}", orm.GetOrderByNumber)
	})
}
