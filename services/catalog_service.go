package services

import (
	"context"
	"fmt"
	"haya_server/database"
	"haya_server/structs"
	"haya_server/structs/tables"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// CatalogService resolves products to their current price (discount applied)
// and per-variant availability. It is read-only: it never mutates stock.
type CatalogService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
}

func NewCatalogService(logger *gecho.Logger, db *database.DB, cacheService *CacheService) *CatalogService {
	return &CatalogService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
	}
}

// GetSnapshots batch-resolves the given product ids in a single query.
// A requested id that no longer exists is simply absent from the returned
// map; callers must handle partial results rather than treating them as a
// hard failure.
func (cs *CatalogService) GetSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*structs.ProductSnapshot, error) {
	result := make(map[uuid.UUID]*structs.ProductSnapshot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	// Serve what we can from cache; the remainder comes from one batched
	// database read.
	missing := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, seen := result[id]; seen {
			continue
		}
		snapshot, err := cs.cacheService.GetSnapshot(ctx, id)
		if err != nil {
			cs.logger.Warn("Snapshot cache read failed", gecho.Field("error", err), gecho.Field("product_id", id))
		}
		if snapshot != nil {
			result[id] = snapshot
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result, nil
	}

	idsIface := make([]any, len(missing))
	for i, id := range missing {
		idsIface[i] = id
	}

	products, err := database.Query[tables.Product](cs.db).
		WhereIn("p.id", idsIface).
		WhereNull("p.deleted_at").
		Relation("Variants").
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog snapshots: %w", err)
	}

	for i := range products {
		snapshot := SnapshotFromProduct(&products[i])
		result[snapshot.ProductID] = snapshot

		if err := cs.cacheService.SetSnapshot(ctx, snapshot); err != nil {
			cs.logger.Warn("Failed to cache snapshot", gecho.Field("error", err), gecho.Field("product_id", snapshot.ProductID))
		}
	}

	return result, nil
}

// GetSnapshot resolves a single product. A missing product is returned as
// (nil, nil).
func (cs *CatalogService) GetSnapshot(ctx context.Context, id uuid.UUID) (*structs.ProductSnapshot, error) {
	snapshots, err := cs.GetSnapshots(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return snapshots[id], nil
}

// SnapshotFromProduct builds the read view of a product: final price with
// the discount rule applied and every variant's availability. Variants whose
// stock and availability flag disagree are reported as unavailable; stock is
// the authoritative field.
func SnapshotFromProduct(product *tables.Product) *structs.ProductSnapshot {
	snapshot := &structs.ProductSnapshot{
		ProductID:  product.ID,
		Name:       product.Name,
		Code:       product.Code,
		FinalPrice: product.FinalPrice(),
		Variants:   make([]structs.VariantSnapshot, 0, len(product.Variants)),
	}

	for i := range product.Variants {
		v := &product.Variants[i]
		if v.DeletedAt != nil {
			continue
		}
		snapshot.Variants = append(snapshot.Variants, structs.VariantSnapshot{
			ID:          v.ID,
			Color:       strings.TrimSpace(v.Color),
			Size:        strings.TrimSpace(v.Size),
			Stock:       v.Stock,
			IsAvailable: v.IsAvailable && v.Stock > 0,
		})
	}

	return snapshot
}
