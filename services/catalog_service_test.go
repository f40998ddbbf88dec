package services

import (
	"testing"
	"time"

	"haya_server/structs/tables"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFromProductAppliesDiscount(t *testing.T) {
	product := &tables.Product{
		ID:            uuid.New(),
		Name:          "Linen Dress",
		Code:          "HAYA-001",
		BasePrice:     10000,
		DiscountType:  tables.DiscountPercentage,
		DiscountValue: 25,
	}

	snapshot := SnapshotFromProduct(product)

	assert.Equal(t, product.ID, snapshot.ProductID)
	assert.Equal(t, "Linen Dress", snapshot.Name)
	assert.Equal(t, uint64(7500), snapshot.FinalPrice)
}

func TestSnapshotFromProductTrimsVariantLabels(t *testing.T) {
	product := &tables.Product{
		ID:        uuid.New(),
		BasePrice: 5000,
		Variants: []tables.ProductVariant{
			{ID: uuid.New(), Color: " Navy ", Size: "M ", Stock: 3, IsAvailable: true},
		},
	}

	snapshot := SnapshotFromProduct(product)

	require.Len(t, snapshot.Variants, 1)
	assert.Equal(t, "Navy", snapshot.Variants[0].Color)
	assert.Equal(t, "M", snapshot.Variants[0].Size)
	require.NotNil(t, snapshot.Variant("Navy", "M"))
}

func TestSnapshotFromProductSkipsDeletedVariants(t *testing.T) {
	deletedAt := time.Now()
	product := &tables.Product{
		ID:        uuid.New(),
		BasePrice: 5000,
		Variants: []tables.ProductVariant{
			{ID: uuid.New(), Color: "Red", Size: "S", Stock: 1, IsAvailable: true},
			{ID: uuid.New(), Color: "Red", Size: "M", Stock: 1, IsAvailable: true, DeletedAt: &deletedAt},
		},
	}

	snapshot := SnapshotFromProduct(product)

	require.Len(t, snapshot.Variants, 1)
	assert.Equal(t, "S", snapshot.Variants[0].Size)
}

func TestSnapshotStockIsAuthoritativeOverFlag(t *testing.T) {
	product := &tables.Product{
		ID:        uuid.New(),
		BasePrice: 5000,
		Variants: []tables.ProductVariant{
			// Flag says available, stock says otherwise.
			{ID: uuid.New(), Color: "Red", Size: "S", Stock: 0, IsAvailable: true},
			// Flag says unavailable; the variant stays unavailable even
			// with stock on hand.
			{ID: uuid.New(), Color: "Red", Size: "M", Stock: 4, IsAvailable: false},
		},
	}

	snapshot := SnapshotFromProduct(product)

	require.Len(t, snapshot.Variants, 2)
	assert.False(t, snapshot.Variants[0].IsAvailable)
	assert.False(t, snapshot.Variants[1].IsAvailable)
}
