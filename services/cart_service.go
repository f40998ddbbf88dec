package services

import (
	"context"
	"encoding/json"
	"fmt"
	"haya_server/structs"
	"sync"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// SnapshotReader is the slice of the catalog the cart layer needs. The cart
// is read-only with respect to backend state: it only ever refreshes its own
// local copy from snapshots.
type SnapshotReader interface {
	GetSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*structs.ProductSnapshot, error)
}

// CartPersistence is the durable store behind a cart. Implementations must
// tolerate a missing cart on Load by returning an empty slice.
type CartPersistence interface {
	Load(ctx context.Context) ([]structs.CartLine, error)
	Save(ctx context.Context, lines []structs.CartLine) error
}

// CartStore holds one client session's cart. It persists on every mutation,
// but only after the initial load has completed, so a saved cart is never
// clobbered by an empty initial state.
type CartStore struct {
	mu      sync.Mutex
	lines   []structs.CartLine
	loaded  bool
	persist CartPersistence
	catalog SnapshotReader
	logger  *gecho.Logger
}

func NewCartStore(logger *gecho.Logger, persist CartPersistence, catalog SnapshotReader) *CartStore {
	return &CartStore{
		persist: persist,
		catalog: catalog,
		logger:  logger,
	}
}

// Load reads the persisted cart. It must be called before any mutation;
// mutations before a successful load fail rather than risk overwriting the
// saved cart.
func (s *CartStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	s.lines = lines
	s.loaded = true
	return nil
}

// Lines returns a copy of the current cart lines.
func (s *CartStore) Lines() []structs.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]structs.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// AddLine adds a line to the cart, merging on the (product, color, size)
// key: adding the same variant twice yields one line with the summed
// quantity, never two lines.
func (s *CartStore) AddLine(ctx context.Context, line structs.CartLine) error {
	if line.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return fmt.Errorf("cart not loaded")
	}

	key := line.Key()
	merged := false
	for i := range s.lines {
		if s.lines[i].Key() == key {
			s.lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}

	if !merged {
		line.Color = key.Color
		line.Size = key.Size
		s.lines = append(s.lines, line)
	}

	return s.save(ctx)
}

// RemoveLine removes the line with the given key. Removing an absent line is
// a no-op.
func (s *CartStore) RemoveLine(ctx context.Context, key structs.VariantKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return fmt.Errorf("cart not loaded")
	}

	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.Key() != key {
			kept = append(kept, line)
		}
	}
	s.lines = kept

	return s.save(ctx)
}

// Clear empties the cart. Called only after a definitive order-placement
// success; an unknown outcome (timeout) must leave the cart intact.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return fmt.Errorf("cart not loaded")
	}

	s.lines = nil
	return s.save(ctx)
}

// Total returns the cart total from the cached unit prices. Display only;
// the authoritative total is recomputed server-side at placement.
func (s *CartStore) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total uint64
	for _, line := range s.lines {
		total += line.UnitPrice * uint64(line.Quantity)
	}
	return total
}

// Reconcile revalidates every cart line against the catalog in one batched
// read. Lines whose product or variant is gone, unavailable, or out of stock
// are pruned; stale cached prices and names are refreshed in place
// (quantities are untouched). Running it twice with no backend change is a
// no-op the second time.
func (s *CartStore) Reconcile(ctx context.Context) (*structs.ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, fmt.Errorf("cart not loaded")
	}

	result := &structs.ReconcileResult{}

	if len(s.lines) == 0 {
		result.Lines = []structs.CartLine{}
		return result, nil
	}

	// One round trip for all distinct products in the cart.
	seen := make(map[uuid.UUID]struct{}, len(s.lines))
	ids := make([]uuid.UUID, 0, len(s.lines))
	for _, line := range s.lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	snapshots, err := s.catalog.GetSnapshots(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile cart: %w", err)
	}

	kept := make([]structs.CartLine, 0, len(s.lines))
	for _, line := range s.lines {
		key := line.Key()

		snapshot, ok := snapshots[line.ProductID]
		if !ok {
			result.Removed = append(result.Removed, key)
			result.Changed = true
			continue
		}

		variant := snapshot.Variant(key.Color, key.Size)
		if variant == nil || !variant.IsAvailable || variant.Stock <= 0 {
			result.Removed = append(result.Removed, key)
			result.Changed = true
			continue
		}

		if line.UnitPrice != snapshot.FinalPrice || line.Name != snapshot.Name {
			line.UnitPrice = snapshot.FinalPrice
			line.Name = snapshot.Name
			result.Changed = true
		}

		kept = append(kept, line)
	}

	s.lines = kept
	result.Lines = make([]structs.CartLine, len(kept))
	copy(result.Lines, kept)

	if result.Changed {
		if err := s.save(ctx); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// save persists the current lines. Callers hold the mutex.
func (s *CartStore) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, s.lines); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// --- Redis-backed persistence ---

const cartKeyPrefix = "haya_cart:"

// RedisCartPersistence stores one session's cart as a JSON-encoded array of
// cart lines, the same shape the original client kept under its haya_cart
// local-storage key.
type RedisCartPersistence struct {
	cache   *CacheService
	session string
}

func NewRedisCartPersistence(cache *CacheService, session string) *RedisCartPersistence {
	return &RedisCartPersistence{cache: cache, session: session}
}

func (p *RedisCartPersistence) key() string {
	return cartKeyPrefix + p.session
}

func (p *RedisCartPersistence) Load(ctx context.Context) ([]structs.CartLine, error) {
	raw, err := p.cache.Get(ctx, p.key())
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []structs.CartLine{}, nil
	}

	var lines []structs.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("corrupt cart payload: %w", err)
	}
	return lines, nil
}

func (p *RedisCartPersistence) Save(ctx context.Context, lines []structs.CartLine) error {
	if lines == nil {
		lines = []structs.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return p.cache.Set(ctx, p.key(), data, p.cache.config.Cache.CartTTL)
}

// CartService hands out per-session cart stores backed by Redis.
type CartService struct {
	logger       *gecho.Logger
	cacheService *CacheService
	catalog      *CatalogService
}

func NewCartService(logger *gecho.Logger, cacheService *CacheService, catalog *CatalogService) *CartService {
	return &CartService{
		logger:       logger,
		cacheService: cacheService,
		catalog:      catalog,
	}
}

// ForSession returns a loaded CartStore for the given session id.
func (cs *CartService) ForSession(ctx context.Context, session string) (*CartStore, error) {
	persist := NewRedisCartPersistence(cs.cacheService, session)
	store := NewCartStore(cs.logger, persist, cs.catalog)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
