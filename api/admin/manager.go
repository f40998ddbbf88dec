package admin

import (
	"haya_server/api/middleware"
	"haya_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AdminRoutesManager struct {
	logger         *gecho.Logger
	productService *services.ProductService
	orderService   *services.OrderService
	healthService  *services.HealthService
	mw             *middleware.Middleware
}

func NewAdminRoutesManager(
	logger *gecho.Logger,
	productService *services.ProductService,
	orderService *services.OrderService,
	healthService *services.HealthService,
	mw *middleware.Middleware,
) *AdminRoutesManager {
	return &AdminRoutesManager{
		logger:         logger,
		productService: productService,
		orderService:   orderService,
		healthService:  healthService,
		mw:             mw,
	}
}

func (ar *AdminRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(ar.mw.AdminAuthMiddleware)

		r.Get("/stats", ar.GetStats)

		// Product management
		r.Post("/products", ar.CreateProduct)
		r.Put("/products/{id}", ar.UpdateProduct)
		r.Delete("/products/{id}", ar.DeleteProduct)
		r.Post("/products/{id}/variants", ar.AddVariant)
		r.Put("/variants/{id}/stock", ar.SetVariantStock)

		// Category management
		r.Post("/categories", ar.CreateCategory)
		r.Put("/categories/{id}", ar.UpdateCategory)
		r.Delete("/categories/{id}", ar.DeleteCategory)
		r.Post("/categories/{id}/subcategories", ar.CreateSubCategory)
		r.Put("/subcategories/{id}", ar.UpdateSubCategory)
		r.Delete("/subcategories/{id}", ar.DeleteSubCategory)

		// Order management
		r.Get("/orders", ar.ListOrders)
		r.Get("/orders/{id}", ar.GetOrderDetails)
		r.Put("/orders/{id}/status", ar.UpdateOrderStatus)
	})
}
