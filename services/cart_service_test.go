package services

import (
	"context"
	"errors"
	"testing"

	"haya_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memPersistence keeps the cart in memory and counts saves, standing in for
// the Redis-backed store.
type memPersistence struct {
	lines   []structs.CartLine
	saves   int
	loadErr error
	saveErr error
}

func (m *memPersistence) Load(ctx context.Context) ([]structs.CartLine, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]structs.CartLine, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

func (m *memPersistence) Save(ctx context.Context, lines []structs.CartLine) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.lines = make([]structs.CartLine, len(lines))
	copy(m.lines, lines)
	m.saves++
	return nil
}

// fakeCatalog serves snapshots from a fixed map.
type fakeCatalog struct {
	snapshots map[uuid.UUID]*structs.ProductSnapshot
	calls     int
}

func (f *fakeCatalog) GetSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*structs.ProductSnapshot, error) {
	f.calls++
	result := make(map[uuid.UUID]*structs.ProductSnapshot)
	for _, id := range ids {
		if s, ok := f.snapshots[id]; ok {
			result[id] = s
		}
	}
	return result, nil
}

func newTestCartStore(t *testing.T, persist CartPersistence, catalog SnapshotReader) *CartStore {
	t.Helper()
	store := NewCartStore(gecho.NewDefaultLogger(), persist, catalog)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func snapshotWithVariant(productID uuid.UUID, name string, price uint64, color, size string, stock int) *structs.ProductSnapshot {
	return &structs.ProductSnapshot{
		ProductID:  productID,
		Name:       name,
		FinalPrice: price,
		Variants: []structs.VariantSnapshot{
			{ID: uuid.New(), Color: color, Size: size, Stock: stock, IsAvailable: stock > 0},
		},
	}
}

func TestCartAddLineMergesSameVariant(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	store := newTestCartStore(t, &memPersistence{}, &fakeCatalog{})

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: productID, Color: "Navy", Size: "M", Quantity: 1, UnitPrice: 7500,
	}))
	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: productID, Color: " Navy ", Size: "M ", Quantity: 1, UnitPrice: 7500,
	}))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartAddLineDistinctVariantsStaySeparate(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	store := newTestCartStore(t, &memPersistence{}, &fakeCatalog{})

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: productID, Color: "Navy", Size: "M", Quantity: 1,
	}))
	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: productID, Color: "Navy", Size: "L", Quantity: 1,
	}))

	assert.Len(t, store.Lines(), 2)
}

func TestCartMutationsRequireLoad(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(gecho.NewDefaultLogger(), &memPersistence{}, &fakeCatalog{})

	err := store.AddLine(ctx, structs.CartLine{ProductID: uuid.New(), Color: "A", Size: "B", Quantity: 1})
	assert.Error(t, err)

	err = store.Clear(ctx)
	assert.Error(t, err)
}

func TestCartPersistsOnMutation(t *testing.T) {
	ctx := context.Background()
	persist := &memPersistence{}
	store := newTestCartStore(t, persist, &fakeCatalog{})

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: uuid.New(), Color: "Red", Size: "S", Quantity: 3,
	}))

	assert.Equal(t, 1, persist.saves)
	require.Len(t, persist.lines, 1)
	assert.Equal(t, 3, persist.lines[0].Quantity)
}

func TestCartLoadFailurePropagates(t *testing.T) {
	store := NewCartStore(gecho.NewDefaultLogger(), &memPersistence{loadErr: errors.New("redis down")}, &fakeCatalog{})
	assert.Error(t, store.Load(context.Background()))
}

func TestCartRemoveLine(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	store := newTestCartStore(t, &memPersistence{}, &fakeCatalog{})

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: productID, Color: "Navy", Size: "M", Quantity: 1,
	}))

	require.NoError(t, store.RemoveLine(ctx, structs.VariantKey{
		ProductID: productID, Color: "Navy", Size: "M",
	}))
	assert.Empty(t, store.Lines())

	// Removing a line that is not there is a no-op, not an error.
	require.NoError(t, store.RemoveLine(ctx, structs.VariantKey{
		ProductID: uuid.New(), Color: "X", Size: "Y",
	}))
}

func TestCartTotal(t *testing.T) {
	ctx := context.Background()
	store := newTestCartStore(t, &memPersistence{}, &fakeCatalog{})

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: uuid.New(), Color: "A", Size: "S", Quantity: 2, UnitPrice: 7500,
	}))
	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: uuid.New(), Color: "B", Size: "M", Quantity: 1, UnitPrice: 500,
	}))

	assert.Equal(t, uint64(15500), store.Total())
}

func TestReconcilePrunesMissingProduct(t *testing.T) {
	ctx := context.Background()
	gone := uuid.New()
	kept := uuid.New()

	catalog := &fakeCatalog{snapshots: map[uuid.UUID]*structs.ProductSnapshot{
		kept: snapshotWithVariant(kept, "Scarf", 5000, "Green", "One Size", 4),
	}}
	store := newTestCartStore(t, &memPersistence{}, catalog)

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: gone, Color: "Red", Size: "M", Quantity: 1, Name: "Scarf", UnitPrice: 5000,
	}))
	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: kept, Color: "Green", Size: "One Size", Quantity: 2, Name: "Scarf", UnitPrice: 5000,
	}))

	result, err := store.Reconcile(ctx)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	require.Len(t, result.Removed, 1)
	assert.Equal(t, gone, result.Removed[0].ProductID)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, kept, result.Lines[0].ProductID)
}

func TestReconcilePrunesOutOfStockVariant(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	catalog := &fakeCatalog{snapshots: map[uuid.UUID]*structs.ProductSnapshot{
		productID: snapshotWithVariant(productID, "Dress", 12000, "Black", "M", 0),
	}}
	store := newTestCartStore(t, &memPersistence{}, catalog)

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: productID, Color: "Black", Size: "M", Quantity: 1, Name: "Dress", UnitPrice: 12000,
	}))

	result, err := store.Reconcile(ctx)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Empty(t, result.Lines)
	assert.Empty(t, store.Lines())
}

func TestReconcileRefreshesStalePriceAndName(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	catalog := &fakeCatalog{snapshots: map[uuid.UUID]*structs.ProductSnapshot{
		productID: snapshotWithVariant(productID, "Dress (new)", 9000, "Black", "M", 3),
	}}
	store := newTestCartStore(t, &memPersistence{}, catalog)

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: productID, Color: "Black", Size: "M", Quantity: 2, Name: "Dress", UnitPrice: 12000,
	}))

	result, err := store.Reconcile(ctx)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, uint64(9000), result.Lines[0].UnitPrice)
	assert.Equal(t, "Dress (new)", result.Lines[0].Name)
	// Quantity is the customer's choice; reconciliation never touches it.
	assert.Equal(t, 2, result.Lines[0].Quantity)
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	catalog := &fakeCatalog{snapshots: map[uuid.UUID]*structs.ProductSnapshot{
		productID: snapshotWithVariant(productID, "Dress", 9000, "Black", "M", 3),
	}}
	store := newTestCartStore(t, &memPersistence{}, catalog)

	require.NoError(t, store.AddLine(ctx, structs.CartLine{
		ProductID: productID, Color: "Black", Size: "M", Quantity: 1, Name: "Dress", UnitPrice: 12000,
	}))

	first, err := store.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := store.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Empty(t, second.Removed)
	assert.Equal(t, first.Lines, second.Lines)
}

func TestReconcileEmptyCart(t *testing.T) {
	catalog := &fakeCatalog{}
	store := newTestCartStore(t, &memPersistence{}, catalog)

	result, err := store.Reconcile(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Empty(t, result.Lines)
	// No lines means no catalog round trip.
	assert.Zero(t, catalog.calls)
}

func TestReconcileBatchesDistinctProducts(t *testing.T) {
	ctx := context.Background()
	a := uuid.New()
	b := uuid.New()

	catalog := &fakeCatalog{snapshots: map[uuid.UUID]*structs.ProductSnapshot{
		a: snapshotWithVariant(a, "A", 1000, "Red", "S", 2),
		b: snapshotWithVariant(b, "B", 2000, "Blue", "M", 2),
	}}
	store := newTestCartStore(t, &memPersistence{}, catalog)

	require.NoError(t, store.AddLine(ctx, structs.CartLine{ProductID: a, Color: "Red", Size: "S", Quantity: 1, Name: "A", UnitPrice: 1000}))
	require.NoError(t, store.AddLine(ctx, structs.CartLine{ProductID: b, Color: "Blue", Size: "M", Quantity: 1, Name: "B", UnitPrice: 2000}))

	_, err := store.Reconcile(ctx)
	require.NoError(t, err)

	// All lines resolve through one snapshot fetch.
	assert.Equal(t, 1, catalog.calls)
}
