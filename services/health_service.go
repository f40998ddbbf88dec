package services

import (
	"context"
	"haya_server/database"
	"runtime"
	"time"

	"github.com/MonkyMars/gecho"
)

var uptimeStart time.Time

func init() {
	uptimeStart = time.Now()
}

type serverHealthStatus struct {
	Uptime       float64   `json:"uptime"`        // in seconds
	CurrentTime  time.Time `json:"current_time"`  // server current time
	ServiceAlive bool      `json:"service_alive"` // always true if service is running
	RamStats     *RamStats `json:"ram_stats"`
}

type RamStats struct {
	TotalMB     uint64 `json:"total_mb"`
	UsedMB      uint64 `json:"used_mb"`
	FreeMB      uint64 `json:"free_mb"`
	UsedPercent uint64 `json:"used_percent"`
}

type databaseHealthStatus struct {
	Connected      bool      `json:"connected"`
	LastChecked    time.Time `json:"last_checked"`
	ResponseTimeMs int64     `json:"response_time_ms"`
}

// DatabaseStats is the admin view of backend storage usage.
type DatabaseStats struct {
	DatabaseName   string `json:"database_name"`
	SizeBytes      int64  `json:"size_bytes"`
	SizePretty     string `json:"size_pretty"`
	OrderCount     int    `json:"order_count"`
	ProductCount   int    `json:"product_count"`
	OpenConns      int    `json:"open_connections"`
	InUseConns     int    `json:"in_use_connections"`
	IdleConns      int    `json:"idle_connections"`
	WaitCount      int64  `json:"wait_count"`
	MaxOpenConns   int    `json:"max_open_connections"`
	CacheConnected bool   `json:"cache_connected"`
}

type HealthService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
	status       serverHealthStatus
}

func NewHealthService(logger *gecho.Logger, db *database.DB, cacheService *CacheService) *HealthService {
	return &HealthService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
		status: serverHealthStatus{
			Uptime:       0,
			CurrentTime:  time.Now(),
			ServiceAlive: true,
			RamStats:     getRamStats(),
		},
	}
}

func getRamStats() *RamStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	totalMB := m.Sys / 1024 / 1024
	usedMB := m.Alloc / 1024 / 1024
	freeMB := totalMB - usedMB
	usedPercent := uint64(0)
	if totalMB > 0 {
		usedPercent = (usedMB * 100) / totalMB
	}

	return &RamStats{
		TotalMB:     totalMB,
		UsedMB:      usedMB,
		FreeMB:      freeMB,
		UsedPercent: usedPercent,
	}
}

func (hs *HealthService) GetServerHealthStatus() serverHealthStatus {
	hs.status.Uptime = time.Since(uptimeStart).Seconds()
	hs.status.CurrentTime = time.Now()
	hs.status.RamStats = getRamStats()
	return hs.status
}

func (hs *HealthService) GetDatabaseHealthStatus() (databaseHealthStatus, error) {
	start := time.Now()
	err := hs.db.PingContext(context.Background())
	elapsed := time.Since(start).Milliseconds()

	dbStatus := databaseHealthStatus{
		Connected:      err == nil,
		LastChecked:    time.Now(),
		ResponseTimeMs: elapsed,
	}

	if err != nil {
		hs.logger.Error("Database health check failed", gecho.Field("error", err))
	}

	return dbStatus, err
}

func (hs *HealthService) GetCacheHealthStatus(ctx context.Context) bool {
	if err := hs.cacheService.Health(ctx); err != nil {
		hs.logger.Error("Cache health check failed", gecho.Field("error", err))
		return false
	}
	return true
}

// dbSizeRow matches the shape of the size query below.
type dbSizeRow struct {
	Name       string `bun:"name"`
	SizeBytes  int64  `bun:"size_bytes"`
	SizePretty string `bun:"size_pretty"`
}

// GetDatabaseStats collects storage and connection pool numbers for the
// admin dashboard.
func (hs *HealthService) GetDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	row, err := database.RawQueryOne[dbSizeRow](hs.db, ctx,
		`SELECT current_database() AS name,
		        pg_database_size(current_database()) AS size_bytes,
		        pg_size_pretty(pg_database_size(current_database())) AS size_pretty`)
	if err != nil {
		return nil, err
	}

	orderCount, err := countRows(hs.db, ctx, "orders")
	if err != nil {
		return nil, err
	}
	productCount, err := countRows(hs.db, ctx, "products")
	if err != nil {
		return nil, err
	}

	poolStats := hs.db.GetStats()

	stats := &DatabaseStats{
		OrderCount:     orderCount,
		ProductCount:   productCount,
		OpenConns:      poolStats.OpenConnections,
		InUseConns:     poolStats.InUse,
		IdleConns:      poolStats.Idle,
		WaitCount:      poolStats.WaitCount,
		MaxOpenConns:   poolStats.MaxOpenConnections,
		CacheConnected: hs.GetCacheHealthStatus(ctx),
	}
	if row != nil {
		stats.DatabaseName = row.Name
		stats.SizeBytes = row.SizeBytes
		stats.SizePretty = row.SizePretty
	}

	return stats, nil
}

type countRow struct {
	Count int `bun:"count"`
}

func countRows(db *database.DB, ctx context.Context, table string) (int, error) {
	row, err := database.RawQueryOne[countRow](db, ctx,
		"SELECT count(*) AS count FROM "+table+" WHERE deleted_at IS NULL")
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, nil
	}
	return row.Count, nil
}
