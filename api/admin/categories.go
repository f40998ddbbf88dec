package admin

import (
	"haya_server/handling"
	"haya_server/lib"
	"haya_server/structs/tables"
	"net/http"

	"github.com/MonkyMars/gecho"
)

type CategoryRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	ImageURL string `json:"image_url"`
	Position int    `json:"position" validate:"min=0"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	ImageURL *string `json:"image_url"`
	Position *int    `json:"position" validate:"omitempty,min=0"`
}

func (req *UpdateCategoryRequest) updates() map[string]any {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	return updates
}

// CreateCategory handles POST /admin/categories
func (ar *AdminRoutesManager) CreateCategory(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[CategoryRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.categories.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	category := &tables.Category{
		Name:     body.Name,
		ImageURL: body.ImageURL,
		Position: body.Position,
	}

	created, err := ar.productService.CreateCategory(r.Context(), category)
	if err != nil {
		handling.HandleError(err, "failed to create category", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.categories.created"),
		gecho.WithData(map[string]any{"category": created}),
		gecho.Send(),
	)
}

// UpdateCategory handles PUT /admin/categories/{id}
func (ar *AdminRoutesManager) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[UpdateCategoryRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.categories.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	category, err := ar.productService.UpdateCategory(r.Context(), id, body.updates())
	if err != nil {
		handling.HandleError(err, "failed to update category", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.categories.updated"),
		gecho.WithData(map[string]any{"category": category}),
		gecho.Send(),
	)
}

// DeleteCategory handles DELETE /admin/categories/{id}
func (ar *AdminRoutesManager) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := ar.productService.DeleteCategory(r.Context(), id); err != nil {
		handling.HandleError(err, "failed to delete category", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.categories.deleted"),
		gecho.Send(),
	)
}

// CreateSubCategory handles POST /admin/categories/{id}/subcategories
func (ar *AdminRoutesManager) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[CategoryRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.categories.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	sub := &tables.SubCategory{
		CategoryID: categoryID,
		Name:       body.Name,
		ImageURL:   body.ImageURL,
		Position:   body.Position,
	}

	created, err := ar.productService.CreateSubCategory(r.Context(), sub)
	if err != nil {
		handling.HandleError(err, "failed to create sub-category", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.categories.subCategoryCreated"),
		gecho.WithData(map[string]any{"sub_category": created}),
		gecho.Send(),
	)
}

// UpdateSubCategory handles PUT /admin/subcategories/{id}
func (ar *AdminRoutesManager) UpdateSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[UpdateCategoryRequest](r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.categories.invalidRequestBody"),
			gecho.WithData(err),
			gecho.Send(),
		)
		return
	}

	sub, err := ar.productService.UpdateSubCategory(r.Context(), id, body.updates())
	if err != nil {
		handling.HandleError(err, "failed to update sub-category", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.categories.subCategoryUpdated"),
		gecho.WithData(map[string]any{"sub_category": sub}),
		gecho.Send(),
	)
}

// DeleteSubCategory handles DELETE /admin/subcategories/{id}
func (ar *AdminRoutesManager) DeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := ar.productService.DeleteSubCategory(r.Context(), id); err != nil {
		handling.HandleError(err, "failed to delete sub-category", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.categories.subCategoryDeleted"),
		gecho.Send(),
	)
}
