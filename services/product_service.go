package services

import (
	"context"
	"fmt"
	"haya_server/database"
	"haya_server/lib"
	"haya_server/structs/tables"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ProductService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
}

func NewProductService(logger *gecho.Logger, db *database.DB, cacheService *CacheService) *ProductService {
	return &ProductService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
	}
}

// ProductListOptions contains filtering and pagination options for product queries
type ProductListOptions struct {
	// Pagination
	Page     int `json:"page"`
	PageSize int `json:"page_size"`

	// Filters
	SubCategoryID *uuid.UUID `json:"sub_category_id,omitempty"`
	MinPrice      *uint64    `json:"min_price,omitempty"` // base price lower bound, in cents
	MaxPrice      *uint64    `json:"max_price,omitempty"` // base price upper bound, in cents
	SearchTerm    string     `json:"search_term,omitempty"`
	OnlyInStock   bool       `json:"only_in_stock,omitempty"`

	// Sorting
	SortBy        string `json:"sort_by"`
	SortDirection string `json:"sort_direction"`

	// Relations
	IncludeVariants bool `json:"include_variants"`
	IncludeImages   bool `json:"include_images"`

	// Performance
	Timeout time.Duration `json:"-"`
}

// ProductListResult wraps the product list response with metadata
type ProductListResult struct {
	Products   []tables.Product    `json:"products"`
	Pagination database.Pagination `json:"pagination"`
	Filters    ProductListOptions  `json:"filters"`
	QueryTime  time.Duration       `json:"query_time"`
}

// GetAllProducts retrieves products with filtering, pagination, and sorting.
// This is the main listing method behind the public catalog endpoints.
func (ps *ProductService) GetAllProducts(ctx context.Context, opts *ProductListOptions) (*ProductListResult, error) {
	startTime := time.Now()

	if opts == nil {
		opts = &ProductListOptions{}
	}
	ps.applyDefaultOptions(opts)

	if err := ps.validateOptions(opts); err != nil {
		ps.logger.Error("Invalid product list options", gecho.Field("error", err), gecho.Field("options", opts))
		return nil, lib.NewValidationError(err.Error())
	}

	queryCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	query := database.Query[tables.Product](ps.db)
	query = ps.applyFilters(query, opts)
	query = ps.applySorting(query, opts)

	if opts.IncludeVariants {
		query = query.Relation("Variants")
	}
	if opts.IncludeImages {
		query = query.Relation("ImageGroups")
	}

	result, err := database.Paginate(query, queryCtx, opts.Page, opts.PageSize)
	if err != nil {
		ps.logger.Error("Failed to fetch products",
			gecho.Field("error", err),
			gecho.Field("page", opts.Page),
			gecho.Field("pageSize", opts.PageSize),
			gecho.Field("duration", time.Since(startTime)))
		return nil, lib.MapPgError(err)
	}

	ps.logger.Debug("Products fetched successfully",
		gecho.Field("count", len(result.Data)),
		gecho.Field("total", result.Pagination.Total),
		gecho.Field("page", result.Pagination.Page),
		gecho.Field("duration", time.Since(startTime)),
	)

	return &ProductListResult{
		Products:   result.Data,
		Pagination: result.Pagination,
		Filters:    *opts,
		QueryTime:  time.Since(startTime),
	}, nil
}

// GetProductByID retrieves a single product with its variants and optionally
// its image groups.
func (ps *ProductService) GetProductByID(ctx context.Context, id uuid.UUID, includeImages bool) (*tables.Product, error) {
	query := database.Query[tables.Product](ps.db).
		Where("p.id", id).
		WhereNull("p.deleted_at").
		Relation("Variants")

	if includeImages {
		query = query.Relation("ImageGroups")
	}

	product, err := query.First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if product == nil {
		return nil, lib.NewNotFoundError("product not found", "")
	}
	return product, nil
}

// GetCategories returns all categories with their subcategories, for the
// storefront navigation.
func (ps *ProductService) GetCategories(ctx context.Context) ([]tables.Category, error) {
	categories, err := database.Query[tables.Category](ps.db).
		Relation("SubCategories").
		OrderBy("c.position", database.ASC).
		All(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	return categories, nil
}

func (ps *ProductService) applyDefaultOptions(opts *ProductListOptions) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100 // Max page size for performance
	}
	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}
	if opts.SortDirection == "" {
		opts.SortDirection = "DESC"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
}

// validateOptions validates the provided options
func (ps *ProductService) validateOptions(opts *ProductListOptions) error {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"base_price": true,
		"name":       true,
		"code":       true,
	}
	if !validSortFields[opts.SortBy] {
		return fmt.Errorf("invalid sort field: %s", opts.SortBy)
	}

	if opts.SortDirection != "ASC" && opts.SortDirection != "DESC" {
		return fmt.Errorf("invalid sort direction: %s (must be ASC or DESC)", opts.SortDirection)
	}

	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return fmt.Errorf("min_price cannot be greater than max_price")
	}

	return nil
}

// applyFilters applies all filter conditions to the query
func (ps *ProductService) applyFilters(query *database.QueryBuilder[tables.Product], opts *ProductListOptions) *database.QueryBuilder[tables.Product] {
	query = query.WhereNull("p.deleted_at")

	if opts.SubCategoryID != nil {
		query = query.Where("p.sub_category_id", *opts.SubCategoryID)
	}

	if opts.MinPrice != nil {
		query = query.WhereOp("p.base_price", ">=", *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		query = query.WhereOp("p.base_price", "<=", *opts.MaxPrice)
	}

	if opts.SearchTerm != "" {
		searchPattern := "%" + strings.TrimSpace(opts.SearchTerm) + "%"
		query = query.WhereRaw(
			"(p.name ILIKE ? OR p.description ILIKE ? OR p.code ILIKE ?)",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if opts.OnlyInStock {
		query = query.WhereRaw(
			"EXISTS (SELECT 1 FROM product_variants pv WHERE pv.product_id = p.id AND pv.deleted_at IS NULL AND pv.is_available AND pv.stock > 0)",
		)
	}

	return query
}

// applySorting applies sorting to the query
func (ps *ProductService) applySorting(query *database.QueryBuilder[tables.Product], opts *ProductListOptions) *database.QueryBuilder[tables.Product] {
	var direction database.OrderDirection
	if opts.SortDirection == "ASC" {
		direction = database.ASC
	} else {
		direction = database.DESC
	}

	query = query.OrderBy("p."+opts.SortBy, direction)

	// Secondary sort for stable ordering across pages.
	query = query.OrderBy("p.id", database.ASC)

	return query
}

// CreateProduct inserts a product with its variants and image groups in one
// transaction.
func (ps *ProductService) CreateProduct(ctx context.Context, product *tables.Product) (*tables.Product, error) {
	startTime := time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	variants := product.Variants
	imageGroups := product.ImageGroups
	product.Variants = nil
	product.ImageGroups = nil

	for i := range variants {
		if variants[i].ID == uuid.Nil {
			variants[i].ID = uuid.New()
		}
		variants[i].ProductID = product.ID
		variants[i].Color = strings.TrimSpace(variants[i].Color)
		variants[i].Size = strings.TrimSpace(variants[i].Size)
		variants[i].IsAvailable = variants[i].Stock > 0
	}
	for i := range imageGroups {
		if imageGroups[i].ID == uuid.Nil {
			imageGroups[i].ID = uuid.New()
		}
		imageGroups[i].ProductID = product.ID
	}

	err := database.Transaction(ctx, func(tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(product).Exec(ctx); err != nil {
			return err
		}
		if len(variants) > 0 {
			if _, err := tx.NewInsert().Model(&variants).Exec(ctx); err != nil {
				return err
			}
		}
		if len(imageGroups) > 0 {
			if _, err := tx.NewInsert().Model(&imageGroups).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		ps.logger.Error("Failed to create product",
			gecho.Field("error", err),
			gecho.Field("product_name", product.Name),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, lib.MapPgError(err)
	}

	product.Variants = variants
	product.ImageGroups = imageGroups

	ps.logger.Info("Product created successfully",
		gecho.Field("id", product.ID),
		gecho.Field("variant_count", len(variants)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return product, nil
}

type UpdateProductRequest struct {
	Name             *string                    `json:"name,omitempty"`
	Code             *string                    `json:"code,omitempty"`
	BasePrice        *uint64                    `json:"base_price,omitempty"`
	DiscountType     *tables.DiscountType       `json:"discount_type,omitempty"`
	DiscountValue    *uint64                    `json:"discount_value,omitempty"`
	Description      *string                    `json:"description,omitempty"`
	Material         *string                    `json:"material,omitempty"`
	CareInstructions *string                    `json:"care_instructions,omitempty"`
	SubCategoryID    *uuid.UUID                 `json:"sub_category_id,omitempty"`
	ImageGroups      []tables.ProductImageGroup `json:"image_groups,omitempty"`
}

// UpdateProduct applies a partial update. Image groups, when provided,
// replace the existing set wholesale. Variant stock is not updated here; it
// has its own path so availability always stays derived from the count.
func (ps *ProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, req *UpdateProductRequest) error {
	if req.DiscountType != nil {
		switch *req.DiscountType {
		case tables.DiscountNone, tables.DiscountPercentage, tables.DiscountFixed:
		default:
			return lib.NewValidationError(fmt.Sprintf("unknown discount type: %s", *req.DiscountType))
		}
	}

	err := database.Transaction(ctx, func(tx bun.Tx) error {
		updateData := make(map[string]any)

		if req.Name != nil {
			updateData["name"] = *req.Name
		}
		if req.Code != nil {
			updateData["code"] = *req.Code
		}
		if req.BasePrice != nil {
			updateData["base_price"] = *req.BasePrice
		}
		if req.DiscountType != nil {
			updateData["discount_type"] = *req.DiscountType
		}
		if req.DiscountValue != nil {
			updateData["discount_value"] = *req.DiscountValue
		}
		if req.Description != nil {
			updateData["description"] = *req.Description
		}
		if req.Material != nil {
			updateData["material"] = *req.Material
		}
		if req.CareInstructions != nil {
			updateData["care_instructions"] = *req.CareInstructions
		}
		if req.SubCategoryID != nil {
			updateData["sub_category_id"] = *req.SubCategoryID
		}

		if len(updateData) > 0 {
			updateData["updated_at"] = time.Now()
			query := tx.NewUpdate().
				Model((*tables.Product)(nil)).
				Where("id = ?", productID).
				Where("deleted_at IS NULL")
			for column, value := range updateData {
				query = query.Set("? = ?", bun.Ident(column), value)
			}

			res, err := query.Exec(ctx)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return lib.NewNotFoundError("product not found", "")
			}
		}

		if req.ImageGroups != nil {
			if _, err := tx.NewDelete().
				Model((*tables.ProductImageGroup)(nil)).
				Where("product_id = ?", productID).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to delete existing image groups: %w", err)
			}

			if len(req.ImageGroups) > 0 {
				for i := range req.ImageGroups {
					if req.ImageGroups[i].ID == uuid.Nil {
						req.ImageGroups[i].ID = uuid.New()
					}
					req.ImageGroups[i].ProductID = productID
				}
				if _, err := tx.NewInsert().Model(&req.ImageGroups).Exec(ctx); err != nil {
					return fmt.Errorf("failed to insert image groups: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return lib.MapPgError(err)
	}

	// The cached snapshot now carries stale pricing.
	if err := ps.cacheService.InvalidateSnapshot(ctx, productID); err != nil {
		ps.logger.Warn("Failed to invalidate snapshot after update",
			gecho.Field("error", err),
			gecho.Field("product_id", productID),
		)
	}

	return nil
}

// DeleteProduct soft deletes a product and its variants, so existing order
// lines keep their references while the catalog stops offering it.
func (ps *ProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	err := database.Transaction(ctx, func(tx bun.Tx) error {
		now := time.Now()

		res, err := tx.NewUpdate().
			Model((*tables.Product)(nil)).
			Set("deleted_at = ?", now).
			Where("id = ?", productID).
			Where("deleted_at IS NULL").
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return lib.NewNotFoundError("product not found", "")
		}

		_, err = tx.NewUpdate().
			Model((*tables.ProductVariant)(nil)).
			Set("deleted_at = ?", now).
			Set("is_available = FALSE").
			Where("product_id = ?", productID).
			Where("deleted_at IS NULL").
			Exec(ctx)
		return err
	})
	if err != nil {
		return lib.MapPgError(err)
	}

	if err := ps.cacheService.InvalidateSnapshot(ctx, productID); err != nil {
		ps.logger.Warn("Failed to invalidate snapshot after delete",
			gecho.Field("error", err),
			gecho.Field("product_id", productID),
		)
	}

	ps.logger.Info("Product deleted", gecho.Field("id", productID))
	return nil
}

// SetVariantStock replaces a variant's stock count. Availability is always
// recomputed from the new count in the same statement, never set directly.
func (ps *ProductService) SetVariantStock(ctx context.Context, variantID uuid.UUID, stock int) (*tables.ProductVariant, error) {
	if stock < 0 {
		return nil, lib.NewValidationError("stock cannot be negative")
	}

	affected, err := database.Query[tables.ProductVariant](ps.db).
		Where("pv.id", variantID).
		WhereNull("pv.deleted_at").
		Update(ctx, map[string]any{
			"stock":        stock,
			"is_available": stock > 0,
			"updated_at":   time.Now(),
		})
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if affected == 0 {
		return nil, lib.NewNotFoundError("variant not found", "")
	}

	variant, err := database.Query[tables.ProductVariant](ps.db).
		Where("pv.id", variantID).
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if variant == nil {
		return nil, lib.NewNotFoundError("variant not found", "")
	}

	if err := ps.cacheService.InvalidateSnapshot(ctx, variant.ProductID); err != nil {
		ps.logger.Warn("Failed to invalidate snapshot after stock change",
			gecho.Field("error", err),
			gecho.Field("product_id", variant.ProductID),
		)
	}

	ps.logger.Info("Variant stock updated",
		gecho.Field("variant_id", variantID),
		gecho.Field("stock", stock))
	return variant, nil
}

// AddVariant attaches a new color and size combination to a product.
func (ps *ProductService) AddVariant(ctx context.Context, variant *tables.ProductVariant) (*tables.ProductVariant, error) {
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	variant.Color = strings.TrimSpace(variant.Color)
	variant.Size = strings.TrimSpace(variant.Size)
	if variant.Color == "" || variant.Size == "" {
		return nil, lib.NewValidationError("variant color and size are required")
	}
	if variant.Stock < 0 {
		return nil, lib.NewValidationError("stock cannot be negative")
	}
	variant.IsAvailable = variant.Stock > 0

	created, err := database.Query[tables.ProductVariant](ps.db).Insert(ctx, variant)
	if err != nil {
		return nil, lib.MapPgError(err)
	}

	if err := ps.cacheService.InvalidateSnapshot(ctx, variant.ProductID); err != nil {
		ps.logger.Warn("Failed to invalidate snapshot after variant create",
			gecho.Field("error", err),
			gecho.Field("product_id", variant.ProductID),
		)
	}

	return created, nil
}
