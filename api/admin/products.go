package admin

import (
	"haya_server/handling"
	"haya_server/lib"
	"haya_server/services"
	"haya_server/structs/tables"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreateProductRequest struct {
	Name             string              `json:"name" validate:"required,min=2,max=200"`
	Code             string              `json:"code" validate:"required,min=2,max=50"`
	BasePrice        uint64              `json:"base_price" validate:"required"`
	DiscountType     tables.DiscountType `json:"discount_type" validate:"omitempty,oneof=none percentage fixed"`
	DiscountValue    uint64              `json:"discount_value"`
	Description      string              `json:"description"`
	Material         string              `json:"material"`
	CareInstructions string              `json:"care_instructions"`
	SubCategoryID    uuid.UUID           `json:"sub_category_id" validate:"required"`

	Variants    []VariantRequest           `json:"variants" validate:"required,min=1,dive"`
	ImageGroups []tables.ProductImageGroup `json:"image_groups,omitempty"`
}

type VariantRequest struct {
	Color string `json:"color" validate:"required"`
	Size  string `json:"size" validate:"required"`
	Stock int    `json:"stock" validate:"min=0"`
}

// CreateProduct handles POST /admin/products
func (ar *AdminRoutesManager) CreateProduct(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[CreateProductRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.products.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	discountType := body.DiscountType
	if discountType == "" {
		discountType = tables.DiscountNone
	}

	product := &tables.Product{
		Name:             body.Name,
		Code:             body.Code,
		BasePrice:        body.BasePrice,
		DiscountType:     discountType,
		DiscountValue:    body.DiscountValue,
		Description:      body.Description,
		Material:         body.Material,
		CareInstructions: body.CareInstructions,
		SubCategoryID:    body.SubCategoryID,
		ImageGroups:      body.ImageGroups,
	}
	for _, v := range body.Variants {
		product.Variants = append(product.Variants, tables.ProductVariant{
			Color: v.Color,
			Size:  v.Size,
			Stock: v.Stock,
		})
	}

	created, err := ar.productService.CreateProduct(r.Context(), product)
	if err != nil {
		handling.HandleError(err, "failed to create product", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.products.created"),
		gecho.WithData(map[string]any{"product": created}),
		gecho.Send(),
	)
}

// UpdateProduct handles PUT /admin/products/{id}
func (ar *AdminRoutesManager) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[services.UpdateProductRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.products.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	if err := ar.productService.UpdateProduct(r.Context(), id, body); err != nil {
		handling.HandleError(err, "failed to update product", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.products.updated"),
		gecho.Send(),
	)
}

// DeleteProduct handles DELETE /admin/products/{id}
func (ar *AdminRoutesManager) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := ar.productService.DeleteProduct(r.Context(), id); err != nil {
		handling.HandleError(err, "failed to delete product", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.products.deleted"),
		gecho.Send(),
	)
}

// AddVariant handles POST /admin/products/{id}/variants
func (ar *AdminRoutesManager) AddVariant(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[VariantRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.products.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	variant := &tables.ProductVariant{
		ProductID: productID,
		Color:     body.Color,
		Size:      body.Size,
		Stock:     body.Stock,
	}

	created, err := ar.productService.AddVariant(r.Context(), variant)
	if err != nil {
		handling.HandleError(err, "failed to add variant", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.products.variantAdded"),
		gecho.WithData(map[string]any{"variant": created}),
		gecho.Send(),
	)
}

type SetStockRequest struct {
	Stock int `json:"stock" validate:"min=0"`
}

// SetVariantStock handles PUT /admin/variants/{id}/stock. Availability is
// derived from the new count by the service; it cannot be set directly.
func (ar *AdminRoutesManager) SetVariantStock(w http.ResponseWriter, r *http.Request) {
	variantID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[SetStockRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.products.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	variant, err := ar.productService.SetVariantStock(r.Context(), variantID, body.Stock)
	if err != nil {
		handling.HandleError(err, "failed to set stock", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.products.stockUpdated"),
		gecho.WithData(map[string]any{"variant": variant}),
		gecho.Send(),
	)
}

// parseIDParam extracts and validates the {id} route parameter.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.invalidId"),
			gecho.Send(),
		)
		return uuid.Nil, false
	}
	return id, true
}
