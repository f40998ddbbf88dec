package products

import (
	"haya_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ProductRoutesManager struct {
	logger         *gecho.Logger
	productService *services.ProductService
	catalogService *services.CatalogService
}

func NewProductRoutesManager(
	logger *gecho.Logger,
	productService *services.ProductService,
	catalogService *services.CatalogService,
) *ProductRoutesManager {
	return &ProductRoutesManager{
		logger:         logger,
		productService: productService,
		catalogService: catalogService,
	}
}

func (prm *ProductRoutesManager) RegisterRoutes(r chi.Router) {
	r.Get("/products", prm.FetchAllProducts)
	r.Get("/products/{id}", prm.FetchProductByID)
	r.Get("/products/{id}/snapshot", prm.FetchSnapshot)
	r.Get("/categories", prm.FetchCategories)
}
