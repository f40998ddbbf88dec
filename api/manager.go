package api

import (
	"haya_server/api/admin"
	"haya_server/api/cart"
	"haya_server/api/health"
	"haya_server/api/middleware"
	"haya_server/api/orders"
	"haya_server/api/products"
	"haya_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	productRoutes *products.ProductRoutesManager
	cartRoutes    *cart.CartRoutesManager
	orderRoutes   *orders.OrderRoutesManager
	adminRoutes   *admin.AdminRoutesManager
	healthRoutes  *health.HealthRoutesManager
}

func NewRouterManager(logger *gecho.Logger, sm *services.ServiceManager, mw *middleware.Middleware) *routerManager {
	return &routerManager{
		productRoutes: products.NewProductRoutesManager(logger, sm.ProductService, sm.CatalogService),
		cartRoutes:    cart.NewCartRoutesManager(logger, sm.CartService),
		orderRoutes:   orders.NewOrderRoutesManager(logger, sm.OrderService, sm.CartService, mw),
		adminRoutes:   admin.NewAdminRoutesManager(logger, sm.ProductService, sm.OrderService, sm.HealthService, mw),
		healthRoutes:  health.NewHealthRoutesManager(sm.HealthService),
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.productRoutes.RegisterRoutes(r)
	rm.cartRoutes.RegisterRoutes(r)
	rm.orderRoutes.RegisterRoutes(r)
	rm.adminRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
}
