package services

import (
	"context"
	"strings"
	"time"

	"haya_server/database"
	"haya_server/lib"
	"haya_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// Category management. Categories and sub-categories are lookup data with no
// soft-delete; deletion is guarded instead, so nothing referencing them can
// be orphaned.

func (ps *ProductService) CreateCategory(ctx context.Context, category *tables.Category) (*tables.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, lib.NewValidationError("category name is required")
	}

	category.ID = uuid.New()
	category.CreatedAt = time.Now()

	created, err := database.Query[tables.Category](ps.db).Insert(ctx, category)
	if err != nil {
		return nil, lib.MapPgError(err)
	}

	ps.logger.Info("Category created",
		gecho.Field("category_id", created.ID),
		gecho.Field("name", created.Name))

	return created, nil
}

func (ps *ProductService) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) (*tables.Category, error) {
	if len(updates) == 0 {
		return nil, lib.NewValidationError("no fields to update")
	}

	affected, err := database.UpdateByID[tables.Category](ps.db, ctx, id, updates)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if affected == 0 {
		return nil, lib.NewNotFoundError("category not found", "")
	}

	category, err := database.Query[tables.Category](ps.db).
		Where("c.id", id).
		Relation("SubCategories").
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	return category, nil
}

// DeleteCategory removes a category. A category that still has sub-categories
// cannot be deleted.
func (ps *ProductService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	children, err := database.Query[tables.SubCategory](ps.db).
		Where("sc.category_id", id).
		Count(ctx)
	if err != nil {
		return lib.MapPgError(err)
	}
	if children > 0 {
		return &lib.AppError{
			Code:    lib.CodeConflict,
			Message: "category still has sub-categories",
		}
	}

	affected, err := database.DeleteByID[tables.Category](ps.db, ctx, id)
	if err != nil {
		return lib.MapPgError(err)
	}
	if affected == 0 {
		return lib.NewNotFoundError("category not found", "")
	}

	ps.logger.Info("Category deleted", gecho.Field("category_id", id))
	return nil
}

func (ps *ProductService) CreateSubCategory(ctx context.Context, sub *tables.SubCategory) (*tables.SubCategory, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return nil, lib.NewValidationError("sub-category name is required")
	}

	parent, err := database.Query[tables.Category](ps.db).
		Where("c.id", sub.CategoryID).
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if parent == nil {
		return nil, lib.NewNotFoundError("category not found", "")
	}

	sub.ID = uuid.New()
	sub.CreatedAt = time.Now()

	created, err := database.Query[tables.SubCategory](ps.db).Insert(ctx, sub)
	if err != nil {
		return nil, lib.MapPgError(err)
	}

	ps.logger.Info("Sub-category created",
		gecho.Field("sub_category_id", created.ID),
		gecho.Field("category_id", created.CategoryID),
		gecho.Field("name", created.Name))

	return created, nil
}

func (ps *ProductService) UpdateSubCategory(ctx context.Context, id uuid.UUID, updates map[string]any) (*tables.SubCategory, error) {
	if len(updates) == 0 {
		return nil, lib.NewValidationError("no fields to update")
	}

	affected, err := database.UpdateByID[tables.SubCategory](ps.db, ctx, id, updates)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if affected == 0 {
		return nil, lib.NewNotFoundError("sub-category not found", "")
	}

	sub, err := database.Query[tables.SubCategory](ps.db).
		Where("sc.id", id).
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	return sub, nil
}

// DeleteSubCategory removes a sub-category unless live products still
// reference it.
func (ps *ProductService) DeleteSubCategory(ctx context.Context, id uuid.UUID) error {
	inUse, err := database.Query[tables.Product](ps.db).
		Where("p.sub_category_id", id).
		WhereNull("p.deleted_at").
		Count(ctx)
	if err != nil {
		return lib.MapPgError(err)
	}
	if inUse > 0 {
		return &lib.AppError{
			Code:    lib.CodeConflict,
			Message: "sub-category still has products",
		}
	}

	affected, err := database.DeleteByID[tables.SubCategory](ps.db, ctx, id)
	if err != nil {
		return lib.MapPgError(err)
	}
	if affected == 0 {
		return lib.NewNotFoundError("sub-category not found", "")
	}

	ps.logger.Info("Sub-category deleted", gecho.Field("sub_category_id", id))
	return nil
}
