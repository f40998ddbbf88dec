package database

import (
	"context"
	"database/sql"
	"fmt"
	"haya_server/structs"
	"haya_server/structs/tables"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// InventoryTx is the unit of work for order placement. Every method runs
// inside the same database transaction; variant stock is only ever mutated
// through it.
type InventoryTx interface {
	// VariantsForUpdate locks and returns the variants matching the given
	// keys. Keys with no matching row are simply absent from the result.
	VariantsForUpdate(ctx context.Context, keys []structs.VariantKey) ([]tables.ProductVariant, error)

	// ProductsByIDs returns the products for the given ids, for the pricing
	// snapshot taken at placement time.
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]tables.Product, error)

	// DecrementStock reduces a variant's stock by qty and recomputes the
	// availability flag in the same statement. The guard `stock >= qty`
	// makes it report false instead of driving stock negative, even if the
	// caller's pre-validation raced.
	DecrementStock(ctx context.Context, variantID uuid.UUID, qty int) (bool, error)

	InsertOrder(ctx context.Context, order *tables.Order) error
	InsertOrderLines(ctx context.Context, lines []*tables.OrderLine) error
}

// InventoryStore runs order placements as single atomic units. Any error
// returned from fn rolls back the whole transaction: no partial orders, no
// partial stock decrements.
type InventoryStore interface {
	RunInTx(ctx context.Context, fn func(tx InventoryTx) error) error
}

// PgInventoryStore is the production InventoryStore over Postgres. Row-level
// locks (SELECT ... FOR UPDATE) serialize concurrent placements per variant.
type PgInventoryStore struct {
	db *DB
}

func NewInventoryStore(db *DB) *PgInventoryStore {
	return &PgInventoryStore{db: db}
}

func (s *PgInventoryStore) RunInTx(ctx context.Context, fn func(tx InventoryTx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&pgInventoryTx{tx: tx})
	})
}

type pgInventoryTx struct {
	tx bun.Tx
}

func (t *pgInventoryTx) VariantsForUpdate(ctx context.Context, keys []structs.VariantKey) ([]tables.ProductVariant, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	var variants []tables.ProductVariant

	query := t.tx.NewSelect().
		Model(&variants).
		Where("pv.deleted_at IS NULL").
		For("UPDATE")

	// Lock rows in a deterministic order to avoid lock-order deadlocks
	// between concurrent placements touching overlapping variants.
	query = query.Order("pv.id ASC")

	query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, key := range keys {
			q = q.WhereOr(
				"(pv.product_id = ? AND TRIM(pv.color) = ? AND TRIM(pv.size) = ?)",
				key.ProductID, key.Color, key.Size,
			)
		}
		return q
	})

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to lock variants: %w", err)
	}

	return variants, nil
}

func (t *pgInventoryTx) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]tables.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []tables.Product
	err := t.tx.NewSelect().
		Model(&products).
		Where("p.id IN (?)", bun.In(ids)).
		Where("p.deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, nil
}

func (t *pgInventoryTx) DecrementStock(ctx context.Context, variantID uuid.UUID, qty int) (bool, error) {
	res, err := t.tx.NewUpdate().
		Model((*tables.ProductVariant)(nil)).
		Set("stock = stock - ?", qty).
		Set("is_available = stock - ? > 0", qty).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", variantID).
		Where("stock >= ?", qty).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	affected, _ := res.RowsAffected()
	return affected == 1, nil
}

func (t *pgInventoryTx) InsertOrder(ctx context.Context, order *tables.Order) error {
	_, err := t.tx.NewInsert().Model(order).Exec(ctx)
	return err
}

func (t *pgInventoryTx) InsertOrderLines(ctx context.Context, lines []*tables.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := t.tx.NewInsert().Model(&lines).Exec(ctx)
	return err
}
