package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mgarrido/folio/internal/database"
)

// SystemHandlers serves operational diagnostics.
type SystemHandlers struct {
	historyDB *database.DB
	cacheDB   *database.DB
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(historyDB, cacheDB *database.DB, startedAt time.Time, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		historyDB: historyDB,
		cacheDB:   cacheDB,
		startedAt: startedAt,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleStatus returns process and database health
// GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuAvg, memUsed := h.systemUsage()

	databases := map[string]string{}
	for _, db := range []*database.DB{h.historyDB, h.cacheDB} {
		if db == nil {
			continue
		}
		status := "ok"
		if err := db.QuickCheck(r.Context()); err != nil {
			status = err.Error()
		}
		databases[db.Name()] = status
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"uptime_seconds":   int64(time.Since(h.startedAt).Seconds()),
		"go_version":       runtime.Version(),
		"goroutines":       runtime.NumGoroutine(),
		"cpu_percent":      cpuAvg,
		"mem_used_percent": memUsed,
		"databases":        databases,
	})
}

// systemUsage samples CPU and memory utilization, tolerating failures on
// platforms where gopsutil has no backend.
func (h *SystemHandlers) systemUsage() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
