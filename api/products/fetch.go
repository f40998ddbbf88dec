package products

import (
	"haya_server/handling"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// FetchAllProducts handles GET /products with filtering, pagination, and sorting
func (p *ProductRoutesManager) FetchAllProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters into options
	opts, err := handling.ParseProductListOptions(r)
	if err != nil {
		p.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("error.invalidQueryParameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	p.logger.Debug("Fetching products",
		gecho.Field("include_variants", opts.IncludeVariants),
		gecho.Field("page", opts.Page),
		gecho.Field("page_size", opts.PageSize),
	)

	result, err := p.productService.GetAllProducts(ctx, opts)
	if err != nil {
		handling.HandleError(err, "failed to fetch products", p.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"products":   result.Products,
			"pagination": result.Pagination,
			"filters":    result.Filters,
			"meta": map[string]any{
				"query_time_ms": result.QueryTime.Milliseconds(),
				"count":         len(result.Products),
			},
		}),
		gecho.Send(),
	)
}

// FetchProductByID handles GET /products/{id} to fetch a single product
func (p *ProductRoutesManager) FetchProductByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		p.logger.Warn("Invalid product ID format", gecho.Field("id", idStr))
		gecho.BadRequest(w,
			gecho.WithMessage("error.products.invalidProductId"),
			gecho.Send(),
		)
		return
	}

	includeImages := r.URL.Query().Get("include_images") == "true"

	product, err := p.productService.GetProductByID(ctx, id, includeImages)
	if err != nil {
		handling.HandleError(err, "failed to fetch product", p.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"product":     product,
			"final_price": product.FinalPrice(),
		}),
		gecho.Send(),
	)
}

// FetchSnapshot handles GET /products/{id}/snapshot. It returns the compact
// price and availability view the cart works with, served from cache when
// fresh.
func (p *ProductRoutesManager) FetchSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.products.invalidProductId"),
			gecho.Send(),
		)
		return
	}

	snapshot, err := p.catalogService.GetSnapshot(ctx, id)
	if err != nil {
		handling.HandleError(err, "failed to fetch snapshot", p.logger, w)
		return
	}
	if snapshot == nil {
		gecho.NotFound(w,
			gecho.WithMessage("error.products.notFound"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(snapshot),
		gecho.Send(),
	)
}

// FetchCategories handles GET /categories for storefront navigation
func (p *ProductRoutesManager) FetchCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := p.productService.GetCategories(r.Context())
	if err != nil {
		handling.HandleError(err, "failed to fetch categories", p.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"categories": categories,
			"count":      len(categories),
		}),
		gecho.Send(),
	)
}
