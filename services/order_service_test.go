package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"haya_server/database"
	"haya_server/lib"
	"haya_server/structs"
	"haya_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInventory implements the inventory port in memory with real transaction
// semantics: each RunInTx works on staged copies and commits them only when
// the function returns nil, so a failed placement leaves stock and orders
// exactly as they were.
type fakeInventory struct {
	mu       sync.Mutex
	products []tables.Product
	variants []tables.ProductVariant
	orders   []tables.Order
	lines    []tables.OrderLine

	// insertConflicts makes the next N InsertOrder calls fail as if the
	// order number hit the unique constraint.
	insertConflicts int
}

func (f *fakeInventory) RunInTx(ctx context.Context, fn func(tx database.InventoryTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx := &fakeInventoryTx{
		inv:      f,
		variants: append([]tables.ProductVariant(nil), f.variants...),
		orders:   append([]tables.Order(nil), f.orders...),
		lines:    append([]tables.OrderLine(nil), f.lines...),
	}

	if err := fn(tx); err != nil {
		return err
	}

	f.variants = tx.variants
	f.orders = tx.orders
	f.lines = tx.lines
	return nil
}

func (f *fakeInventory) stockOf(variantID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.variants {
		if f.variants[i].ID == variantID {
			return f.variants[i].Stock
		}
	}
	return -1
}

func (f *fakeInventory) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeInventory) storedOrder(id uuid.UUID) *tables.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].Id == id {
			o := f.orders[i]
			return &o
		}
	}
	return nil
}

type fakeInventoryTx struct {
	inv      *fakeInventory
	variants []tables.ProductVariant
	orders   []tables.Order
	lines    []tables.OrderLine
}

func (t *fakeInventoryTx) VariantsForUpdate(ctx context.Context, keys []structs.VariantKey) ([]tables.ProductVariant, error) {
	var out []tables.ProductVariant
	for i := range t.variants {
		v := t.variants[i]
		if v.DeletedAt != nil {
			continue
		}
		for _, key := range keys {
			if v.ProductID == key.ProductID && v.Matches(key.Color, key.Size) {
				out = append(out, v)
				break
			}
		}
	}
	return out, nil
}

func (t *fakeInventoryTx) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]tables.Product, error) {
	var out []tables.Product
	for _, p := range t.inv.products {
		if p.DeletedAt != nil {
			continue
		}
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (t *fakeInventoryTx) DecrementStock(ctx context.Context, variantID uuid.UUID, qty int) (bool, error) {
	for i := range t.variants {
		if t.variants[i].ID != variantID {
			continue
		}
		if t.variants[i].Stock < qty {
			return false, nil
		}
		t.variants[i].Stock -= qty
		t.variants[i].IsAvailable = t.variants[i].Stock > 0
		return true, nil
	}
	return false, nil
}

func (t *fakeInventoryTx) InsertOrder(ctx context.Context, order *tables.Order) error {
	if t.inv.insertConflicts > 0 {
		t.inv.insertConflicts--
		return lib.ErrConflict
	}
	for i := range t.orders {
		if t.orders[i].OrderNumber == order.OrderNumber {
			return lib.ErrConflict
		}
	}
	t.orders = append(t.orders, *order)
	return nil
}

func (t *fakeInventoryTx) InsertOrderLines(ctx context.Context, lines []*tables.OrderLine) error {
	for _, l := range lines {
		t.lines = append(t.lines, *l)
	}
	return nil
}

const orderTestKey = "0123456789abcdef0123456789abcdef"

func newTestOrderService(inv database.InventoryStore) *OrderService {
	cfg := &structs.Config{
		Encryption: &structs.EncryptionConfig{Key: orderTestKey},
	}
	return NewOrderService(gecho.NewDefaultLogger(), cfg, nil, inv, nil, nil)
}

// seedProduct returns an inventory with one product and one variant.
func seedProduct(name string, basePrice uint64, discountType tables.DiscountType, discountValue uint64, color, size string, stock int) (*fakeInventory, tables.Product, tables.ProductVariant) {
	product := tables.Product{
		ID:            uuid.New(),
		Name:          name,
		Code:          "HAYA-001",
		BasePrice:     basePrice,
		DiscountType:  discountType,
		DiscountValue: discountValue,
	}
	variant := tables.ProductVariant{
		ID:          uuid.New(),
		ProductID:   product.ID,
		Color:       color,
		Size:        size,
		Stock:       stock,
		IsAvailable: stock > 0,
	}
	inv := &fakeInventory{
		products: []tables.Product{product},
		variants: []tables.ProductVariant{variant},
	}
	return inv, product, variant
}

func orderRequest(items []structs.OrderItemRequest, total uint64) *structs.OrderRequest {
	return &structs.OrderRequest{
		Name:    "Amira Hassan",
		Phone:   "+31612345678",
		City:    "Rotterdam",
		Address: "Witte de Withstraat 12",
		Items:   items,
		Total:   total,
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	ctx := context.Background()
	inv, product, variant := seedProduct("Linen Dress", 10000, tables.DiscountPercentage, 25, "Black", "M", 5)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 2},
	}, 15000)

	order, err := svc.PlaceOrder(ctx, req, nil)
	require.NoError(t, err)

	assert.Equal(t, tables.OrderStatusPending, order.Status)
	assert.Equal(t, uint64(15000), order.TotalAmount)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "HY-"))
	assert.Equal(t, "Amira Hassan", order.Name)

	require.Len(t, order.Lines, 1)
	line := order.Lines[0]
	assert.Equal(t, uint64(7500), line.UnitPrice)
	assert.Equal(t, uint64(15000), line.LineTotal)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "Linen Dress", line.ProductName)

	assert.Equal(t, 3, inv.stockOf(variant.ID))
	assert.Equal(t, 1, inv.orderCount())
}

func TestPlaceOrderEncryptsStoredCustomerData(t *testing.T) {
	ctx := context.Background()
	inv, product, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
	}, 0)

	order, err := svc.PlaceOrder(ctx, req, nil)
	require.NoError(t, err)

	stored := inv.storedOrder(order.Id)
	require.NotNil(t, stored)
	assert.NotEqual(t, req.Name, stored.Name)
	assert.NotEqual(t, req.Address, stored.Address)

	plain, err := lib.Decrypt(stored.Name, orderTestKey)
	require.NoError(t, err)
	assert.Equal(t, "Amira Hassan", plain)
}

func TestPlaceOrderInsufficientStockRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	inv, product, variant := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)

	second := tables.ProductVariant{
		ID:          uuid.New(),
		ProductID:   product.ID,
		Color:       "Black",
		Size:        "L",
		Stock:       1,
		IsAvailable: true,
	}
	inv.variants = append(inv.variants, second)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 2},
		{ProductID: product.ID, Color: "Black", Size: "L", Quantity: 3},
	}, 0)

	_, err := svc.PlaceOrder(ctx, req, nil)
	require.Error(t, err)
	assert.Equal(t, lib.CodeInsufficientStock, lib.AsAppError(err).Code)
	assert.Contains(t, lib.AsAppError(err).Line, "Black/L")

	// The valid first line must not have been decremented.
	assert.Equal(t, 5, inv.stockOf(variant.ID))
	assert.Equal(t, 1, inv.stockOf(second.ID))
	assert.Zero(t, inv.orderCount())
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	ctx := context.Background()
	inv, _, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: uuid.New(), Color: "Black", Size: "M", Quantity: 1},
	}, 0)

	_, err := svc.PlaceOrder(ctx, req, nil)
	require.Error(t, err)
	assert.Equal(t, lib.CodeNotFound, lib.AsAppError(err).Code)
	assert.Zero(t, inv.orderCount())
}

func TestPlaceOrderUnknownVariant(t *testing.T) {
	ctx := context.Background()
	inv, product, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "XXL", Quantity: 1},
	}, 0)

	_, err := svc.PlaceOrder(ctx, req, nil)
	require.Error(t, err)
	assert.Equal(t, lib.CodeNotFound, lib.AsAppError(err).Code)
}

func TestPlaceOrderTotalMismatchRejected(t *testing.T) {
	ctx := context.Background()
	inv, product, variant := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	// Client saw a stale price of 8000; the live total is 10000.
	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
	}, 8000)

	_, err := svc.PlaceOrder(ctx, req, nil)
	require.Error(t, err)
	assert.Equal(t, lib.CodeConflict, lib.AsAppError(err).Code)
	assert.Equal(t, 5, inv.stockOf(variant.ID))
}

func TestPlaceOrderZeroTotalSkipsVerification(t *testing.T) {
	ctx := context.Background()
	inv, product, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
	}, 0)

	order, err := svc.PlaceOrder(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), order.TotalAmount)
}

func TestPlaceOrderMergesDuplicateItems(t *testing.T) {
	ctx := context.Background()
	inv, product, variant := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
		{ProductID: product.ID, Color: " Black", Size: "M ", Quantity: 1},
	}, 0)

	order, err := svc.PlaceOrder(ctx, req, nil)
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.Equal(t, 3, inv.stockOf(variant.ID))
}

func TestPlaceOrderRejectsEmptyItems(t *testing.T) {
	ctx := context.Background()
	inv, _, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	_, err := svc.PlaceOrder(ctx, orderRequest(nil, 0), nil)
	require.Error(t, err)
	assert.Equal(t, lib.CodeValidation, lib.AsAppError(err).Code)
	assert.Zero(t, inv.orderCount())
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	inv, product, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 0},
	}, 0)

	_, err := svc.PlaceOrder(ctx, req, nil)
	require.Error(t, err)
	assert.Equal(t, lib.CodeValidation, lib.AsAppError(err).Code)
}

func TestPlaceOrderRetriesOrderNumberCollision(t *testing.T) {
	ctx := context.Background()
	inv, product, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	inv.insertConflicts = 2
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
	}, 0)

	order, err := svc.PlaceOrder(ctx, req, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "HY-"))
	assert.Equal(t, 1, inv.orderCount())
}

func TestPlaceOrderGivesUpAfterRepeatedCollisions(t *testing.T) {
	ctx := context.Background()
	inv, product, variant := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	inv.insertConflicts = orderNumberAttempts
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
	}, 0)

	_, err := svc.PlaceOrder(ctx, req, nil)
	require.Error(t, err)
	assert.Equal(t, lib.CodeInternal, lib.AsAppError(err).Code)

	// The failed insert rolled back the stock decrement with it.
	assert.Equal(t, 5, inv.stockOf(variant.ID))
	assert.Zero(t, inv.orderCount())
}

func TestPlaceOrderLinksUserWhenAuthenticated(t *testing.T) {
	ctx := context.Background()
	inv, product, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	userId := uuid.New()
	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
	}, 0)

	order, err := svc.PlaceOrder(ctx, req, &userId)
	require.NoError(t, err)
	require.NotNil(t, order.UserId)
	assert.Equal(t, userId, *order.UserId)

	guest, err := svc.PlaceOrder(ctx, req, nil)
	require.NoError(t, err)
	assert.Nil(t, guest.UserId)
}

func TestPlaceOrderConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	inv, product, variant := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	const attempts = 12

	var wg sync.WaitGroup
	var mu sync.Mutex
	var placed, rejected int

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := orderRequest([]structs.OrderItemRequest{
				{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
			}, 0)

			_, err := svc.PlaceOrder(ctx, req, nil)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				placed++
				return
			}
			rejected++
			assert.Equal(t, lib.CodeInsufficientStock, lib.AsAppError(err).Code)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, placed)
	assert.Equal(t, attempts-5, rejected)
	assert.Equal(t, 0, inv.stockOf(variant.ID))
	assert.Equal(t, 5, inv.orderCount())
}

func TestPlacedLinePriceSurvivesLaterPriceChange(t *testing.T) {
	ctx := context.Background()
	inv, product, _ := seedProduct("Linen Dress", 10000, tables.DiscountNone, 0, "Black", "M", 5)
	svc := newTestOrderService(inv)

	req := orderRequest([]structs.OrderItemRequest{
		{ProductID: product.ID, Color: "Black", Size: "M", Quantity: 1},
	}, 0)

	order, err := svc.PlaceOrder(ctx, req, nil)
	require.NoError(t, err)

	// Reprice the product after the sale.
	inv.mu.Lock()
	inv.products[0].BasePrice = 20000
	storedLine := inv.lines[0]
	inv.mu.Unlock()

	assert.Equal(t, uint64(10000), storedLine.UnitPrice)
	assert.Equal(t, uint64(10000), order.Lines[0].UnitPrice)
	assert.Equal(t, uint64(10000), order.TotalAmount)
}

func TestMergeOrderItemsPreservesOrder(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	merged, err := mergeOrderItems([]structs.OrderItemRequest{
		{ProductID: a, Color: "Red", Size: "S", Quantity: 1},
		{ProductID: b, Color: "Blue", Size: "M", Quantity: 1},
		{ProductID: a, Color: "Red", Size: "S", Quantity: 2},
	})
	require.NoError(t, err)

	require.Len(t, merged, 2)
	assert.Equal(t, a, merged[0].ProductID)
	assert.Equal(t, 3, merged[0].Quantity)
	assert.Equal(t, b, merged[1].ProductID)
}
