package admin

import (
	"haya_server/handling"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// GetStats handles GET /admin/stats: database size, row counts, and
// connection pool usage for the admin dashboard.
func (ar *AdminRoutesManager) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := ar.healthService.GetDatabaseStats(r.Context())
	if err != nil {
		handling.HandleError(err, "failed to collect stats", ar.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(stats),
		gecho.Send(),
	)
}
