package services

import (
	"context"
	"errors"
	"fmt"
	"haya_server/database"
	"haya_server/lib"
	"haya_server/structs"
	"haya_server/structs/tables"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// orderNumberAttempts bounds the retries when a generated order number
// collides with an existing one.
const orderNumberAttempts = 5

type OrderService struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	db           *database.DB
	inventory    database.InventoryStore
	cacheService *CacheService
	emailService *EmailService
}

func NewOrderService(
	logger *gecho.Logger,
	cfg *structs.Config,
	db *database.DB,
	inventory database.InventoryStore,
	cacheService *CacheService,
	emailService *EmailService,
) *OrderService {
	return &OrderService{
		logger:       logger,
		cfg:          cfg,
		db:           db,
		inventory:    inventory,
		cacheService: cacheService,
		emailService: emailService,
	}
}

// PlaceOrder runs a checkout as one atomic unit: every line is validated
// against locked stock before anything is written, then stock decrements and
// the order insert happen in the same transaction. Any failed line rolls
// back the whole placement.
//
// On success the returned order carries its lines with the prices frozen at
// this moment; the customer fields are still plaintext (encryption happens
// on the stored rows only).
func (os *OrderService) PlaceOrder(ctx context.Context, req *structs.OrderRequest, userId *uuid.UUID) (*tables.Order, error) {
	items, err := mergeOrderItems(req.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, lib.NewValidationError("order must contain at least one item")
	}

	os.logger.Info("Placing order",
		gecho.Field("lines", len(items)),
		gecho.Field("guest", userId == nil))

	var placed *tables.Order

	txErr := os.inventory.RunInTx(ctx, func(tx database.InventoryTx) error {
		order, err := os.placeInTx(ctx, tx, req, items, userId)
		if err != nil {
			return err
		}
		placed = order
		return nil
	})

	if txErr != nil {
		appErr := lib.AsAppError(txErr)
		if appErr.Code == lib.CodeInternal {
			os.logger.Error("Order placement failed", gecho.Field("error", txErr))
		} else {
			os.logger.Warn("Order placement rejected",
				gecho.Field("code", string(appErr.Code)),
				gecho.Field("line", appErr.Line))
		}
		return nil, appErr
	}

	os.logger.Info("Order placed",
		gecho.Field("order_number", placed.OrderNumber),
		gecho.Field("total", placed.TotalAmount))

	// Cached snapshots for the purchased products now overstate stock.
	for _, line := range placed.Lines {
		if os.cacheService == nil {
			break
		}
		if err := os.cacheService.InvalidateSnapshot(ctx, line.ProductId); err != nil {
			os.logger.Warn("Failed to invalidate snapshot after order",
				gecho.Field("product_id", line.ProductId),
				gecho.Field("error", err))
		}
	}

	if os.emailService != nil {
		go os.emailService.SendOrderConfirmation(placed, req.Name)
	}

	return placed, nil
}

// placeInTx is the body of the placement transaction. Every returned error
// rolls the transaction back.
func (os *OrderService) placeInTx(
	ctx context.Context,
	tx database.InventoryTx,
	req *structs.OrderRequest,
	items []structs.OrderItemRequest,
	userId *uuid.UUID,
) (*tables.Order, error) {
	keys := make([]structs.VariantKey, 0, len(items))
	productIds := make([]uuid.UUID, 0, len(items))
	seenProducts := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		keys = append(keys, structs.VariantKey{
			ProductID: item.ProductID,
			Color:     strings.TrimSpace(item.Color),
			Size:      strings.TrimSpace(item.Size),
		})
		if _, ok := seenProducts[item.ProductID]; !ok {
			seenProducts[item.ProductID] = struct{}{}
			productIds = append(productIds, item.ProductID)
		}
	}

	// Lock every variant up front. From here until commit, no concurrent
	// placement can read or change these rows.
	variants, err := tx.VariantsForUpdate(ctx, keys)
	if err != nil {
		return nil, lib.MapPgError(err)
	}

	products, err := tx.ProductsByIDs(ctx, productIds)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	productMap := make(map[uuid.UUID]*tables.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	// Pre-validate every line before touching any stock, so rejection never
	// leaves a half-decremented order behind.
	type resolvedLine struct {
		item    structs.OrderItemRequest
		key     structs.VariantKey
		product *tables.Product
		variant *tables.ProductVariant
	}

	resolved := make([]resolvedLine, 0, len(items))
	var total uint64

	for i, item := range items {
		key := keys[i]
		lineRef := fmt.Sprintf("%s %s/%s", item.ProductID, key.Color, key.Size)

		product, ok := productMap[item.ProductID]
		if !ok {
			return nil, lib.NewNotFoundError("product no longer exists", lineRef)
		}

		var variant *tables.ProductVariant
		for j := range variants {
			if variants[j].ProductID == item.ProductID && variants[j].Matches(key.Color, key.Size) {
				variant = &variants[j]
				break
			}
		}
		if variant == nil {
			return nil, lib.NewNotFoundError("variant no longer exists", lineRef)
		}

		if !variant.Purchasable(item.Quantity) {
			return nil, lib.NewInsufficientStockError(
				fmt.Sprintf("only %d in stock, %d requested", variant.Stock, item.Quantity),
				lineRef)
		}

		resolved = append(resolved, resolvedLine{item: item, key: key, product: product, variant: variant})
		total += product.FinalPrice() * uint64(item.Quantity)
	}

	// The client submitted the total its cart displayed. A mismatch means
	// pricing changed under it; reject so the customer confirms the new
	// total instead of being silently charged a different amount.
	if req.Total != 0 && req.Total != total {
		return nil, &lib.AppError{
			Code:    lib.CodeConflict,
			Message: fmt.Sprintf("order total changed: expected %d, current %d", req.Total, total),
		}
	}

	// All lines validated; decrement stock. The per-statement guard reports
	// false instead of driving stock negative, so even a race that slipped
	// past the locks cannot oversell.
	for _, line := range resolved {
		ok, err := tx.DecrementStock(ctx, line.variant.ID, line.item.Quantity)
		if err != nil {
			return nil, lib.MapPgError(err)
		}
		if !ok {
			return nil, lib.NewInsufficientStockError(
				"stock changed during placement",
				fmt.Sprintf("%s %s/%s", line.item.ProductID, line.key.Color, line.key.Size))
		}
	}

	order, err := os.buildOrder(req, userId, total)
	if err != nil {
		return nil, err
	}

	if err := os.insertWithFreshNumber(ctx, tx, order); err != nil {
		return nil, err
	}

	lines := make([]*tables.OrderLine, 0, len(resolved))
	for _, line := range resolved {
		unitPrice := line.product.FinalPrice()
		lines = append(lines, &tables.OrderLine{
			Id:          uuid.New(),
			OrderId:     order.Id,
			ProductId:   line.item.ProductID,
			VariantId:   line.variant.ID,
			Color:       line.key.Color,
			Size:        line.key.Size,
			Quantity:    line.item.Quantity,
			ProductName: line.product.Name,
			ProductCode: line.product.Code,
			UnitPrice:   unitPrice,
			LineTotal:   unitPrice * uint64(line.item.Quantity),
		})
	}

	if err := tx.InsertOrderLines(ctx, lines); err != nil {
		return nil, lib.MapPgError(err)
	}

	// Hand back the placed order with plaintext customer fields and the
	// frozen line snapshots.
	result := *order
	result.Name = req.Name
	result.Phone = req.Phone
	result.City = req.City
	result.Address = req.Address
	result.Lines = make([]tables.OrderLine, 0, len(lines))
	for _, l := range lines {
		result.Lines = append(result.Lines, *l)
	}

	return &result, nil
}

// buildOrder assembles the order row with the customer fields encrypted at
// rest.
func (os *OrderService) buildOrder(req *structs.OrderRequest, userId *uuid.UUID, total uint64) (*tables.Order, error) {
	key := os.cfg.Encryption.Key

	name, err := lib.Encrypt(lib.SanitizeString(req.Name, true, true), key)
	if err != nil {
		return nil, lib.NewInternalError(err)
	}
	phone, err := lib.Encrypt(lib.SanitizeString(req.Phone, true, true), key)
	if err != nil {
		return nil, lib.NewInternalError(err)
	}
	city, err := lib.Encrypt(lib.SanitizeString(req.City, true, true), key)
	if err != nil {
		return nil, lib.NewInternalError(err)
	}
	address, err := lib.Encrypt(lib.SanitizeString(req.Address, true, true), key)
	if err != nil {
		return nil, lib.NewInternalError(err)
	}

	now := time.Now()
	return &tables.Order{
		Id:          uuid.New(),
		OrderNumber: lib.GenerateOrderNumber(),
		Name:        name,
		Phone:       phone,
		City:        city,
		Address:     address,
		UserId:      userId,
		TotalAmount: total,
		Status:      tables.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// insertWithFreshNumber inserts the order, regenerating the order number on
// a unique-constraint collision.
func (os *OrderService) insertWithFreshNumber(ctx context.Context, tx database.InventoryTx, order *tables.Order) error {
	for attempt := range orderNumberAttempts {
		err := tx.InsertOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(lib.MapPgError(err), lib.ErrConflict) {
			return lib.MapPgError(err)
		}
		os.logger.Warn("Order number collision, regenerating",
			gecho.Field("order_number", order.OrderNumber),
			gecho.Field("attempt", attempt+1))
		order.OrderNumber = lib.GenerateOrderNumber()
	}
	return lib.NewInternalError(fmt.Errorf("could not allocate a unique order number after %d attempts", orderNumberAttempts))
}

// GetOrderByNumber fetches a single order with its lines by the customer
// facing order number.
func (os *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*tables.Order, error) {
	order, err := database.Query[tables.Order](os.db).
		Where("o.order_number", orderNumber).
		WhereNull("o.deleted_at").
		Relation("Lines").
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if order == nil {
		return nil, lib.NewNotFoundError("order not found", "")
	}
	if err := os.decryptOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderById fetches a single order with its lines.
func (os *OrderService) GetOrderById(ctx context.Context, id uuid.UUID) (*tables.Order, error) {
	order, err := database.Query[tables.Order](os.db).
		Where("o.id", id).
		WhereNull("o.deleted_at").
		Relation("Lines").
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if order == nil {
		return nil, lib.NewNotFoundError("order not found", "")
	}
	if err := os.decryptOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetAllOrders returns a page of orders, newest first. Admin only.
func (os *OrderService) GetAllOrders(ctx context.Context, page, pageSize int) (*database.PaginationResult[tables.Order], error) {
	q := database.Query[tables.Order](os.db).
		WhereNull("o.deleted_at").
		Relation("Lines").
		OrderBy("o.created_at", database.DESC)

	result, err := database.Paginate(q, ctx, page, pageSize)
	if err != nil {
		return nil, lib.MapPgError(err)
	}

	for i := range result.Data {
		if err := os.decryptOrder(&result.Data[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UpdateOrderStatus moves an order along its status progression. Invalid
// transitions (skipping steps, leaving a terminal state) are rejected.
func (os *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, next tables.OrderStatus) (*tables.Order, error) {
	switch next {
	case tables.OrderStatusPending, tables.OrderStatusProcessing,
		tables.OrderStatusShipped, tables.OrderStatusDelivered,
		tables.OrderStatusCancelled:
	default:
		return nil, lib.NewValidationError(fmt.Sprintf("unknown order status: %s", next))
	}

	order, err := database.Query[tables.Order](os.db).
		Where("o.id", id).
		WhereNull("o.deleted_at").
		First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if order == nil {
		return nil, lib.NewNotFoundError("order not found", "")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, &lib.AppError{
			Code:    lib.CodeConflict,
			Message: fmt.Sprintf("cannot move order from %s to %s", order.Status, next),
		}
	}

	affected, err := database.UpdateByID[tables.Order](os.db, ctx, id, map[string]any{
		"status":     next,
		"updated_at": time.Now(),
	})
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if affected == 0 {
		return nil, lib.NewNotFoundError("order not found", "")
	}

	os.logger.Info("Order status updated",
		gecho.Field("order_number", order.OrderNumber),
		gecho.Field("from", string(order.Status)),
		gecho.Field("to", string(next)))

	order.Status = next
	if err := os.decryptOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// decryptOrder restores the customer fields on a stored order.
func (os *OrderService) decryptOrder(order *tables.Order) error {
	key := os.cfg.Encryption.Key

	fields := []*string{&order.Name, &order.Phone, &order.City, &order.Address}
	for _, f := range fields {
		plain, err := lib.Decrypt(*f, key)
		if err != nil {
			return lib.NewInternalError(fmt.Errorf("failed to decrypt order %s: %w", order.OrderNumber, err))
		}
		*f = plain
	}
	return nil
}

// mergeOrderItems collapses duplicate (product, color, size) lines into one
// line with the summed quantity, mirroring how the cart merges on add.
func mergeOrderItems(items []structs.OrderItemRequest) ([]structs.OrderItemRequest, error) {
	merged := make([]structs.OrderItemRequest, 0, len(items))
	index := make(map[structs.VariantKey]int, len(items))

	for _, item := range items {
		if item.Quantity < 1 {
			return nil, lib.NewValidationError("quantity must be at least 1")
		}
		key := structs.VariantKey{
			ProductID: item.ProductID,
			Color:     strings.TrimSpace(item.Color),
			Size:      strings.TrimSpace(item.Size),
		}
		if i, ok := index[key]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, item)
	}

	return merged, nil
}
