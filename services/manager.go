package services

import (
	"haya_server/database"
	"haya_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	CacheService   *CacheService
	CatalogService *CatalogService
	CartService    *CartService
	EmailService   *EmailService
	HealthService  *HealthService
	ProductService *ProductService
	OrderService   *OrderService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB) *ServiceManager {
	cacheService := NewCacheService(logger, cfg)
	catalogService := NewCatalogService(logger, db, cacheService)
	cartService := NewCartService(logger, cacheService, catalogService)
	emailService := NewEmailService(logger, cfg)
	healthService := NewHealthService(logger, db, cacheService)
	productService := NewProductService(logger, db, cacheService)

	inventory := database.NewInventoryStore(db)
	orderService := NewOrderService(logger, cfg, db, inventory, cacheService, emailService)

	return &ServiceManager{
		CacheService:   cacheService,
		CatalogService: catalogService,
		CartService:    cartService,
		EmailService:   emailService,
		HealthService:  healthService,
		ProductService: productService,
		OrderService:   orderService,
	}
}
