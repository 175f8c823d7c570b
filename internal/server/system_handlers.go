package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/rebound/internal/database"
	"github.com/aristath/rebound/internal/modules/screening"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatisticsProvider reports screener database counts
type StatisticsProvider interface {
	Statistics() (*screening.Statistics, error)
}

// ScanState reports whether a scan is running
type ScanState interface {
	Running() bool
}

// SystemHandlers serves host and database status
type SystemHandlers struct {
	log        zerolog.Logger
	databases  []*database.DB
	statistics StatisticsProvider
	scans      ScanState
	startedAt  time.Time
}

// NewSystemHandlers creates system handlers. Nil databases are skipped.
func NewSystemHandlers(log zerolog.Logger, databases []*database.DB, statistics StatisticsProvider, scans ScanState) *SystemHandlers {
	dbs := make([]*database.DB, 0, len(databases))
	for _, db := range databases {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return &SystemHandlers{
		log:        log.With().Str("component", "system_handlers").Logger(),
		databases:  dbs,
		statistics: statistics,
		scans:      scans,
		startedAt:  time.Now(),
	}
}

// DatabaseStatus is the health and size of one database
type DatabaseStatus struct {
	*database.Stats
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string                `json:"status"`
	Uptime        string                `json:"uptime"`
	Databases     []DatabaseStatus      `json:"databases"`
	Statistics    *screening.Statistics `json:"statistics,omitempty"`
	CPUPercent    float64               `json:"cpu_percent"`
	MemoryPercent float64               `json:"memory_percent"`
	Goroutines    int                   `json:"goroutines"`
	ScanRunning   bool                  `json:"scan_running"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	resp := SystemStatusResponse{
		Status:        "healthy",
		Uptime:        time.Since(h.startedAt).Round(time.Second).String(),
		Databases:     make([]DatabaseStatus, 0, len(h.databases)),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
	}

	for _, db := range h.databases {
		resp.Databases = append(resp.Databases, h.databaseStatus(r.Context(), db))
	}
	for _, db := range resp.Databases {
		if !db.Healthy {
			resp.Status = "degraded"
		}
	}

	if h.statistics != nil {
		stats, err := h.statistics.Statistics()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to get screener statistics")
		} else {
			resp.Statistics = stats
		}
	}
	if h.scans != nil {
		resp.ScanRunning = h.scans.Running()
	}

	writeJSON(w, http.StatusOK, resp, h.log)
}

func (h *SystemHandlers) databaseStatus(ctx context.Context, db *database.DB) DatabaseStatus {
	status := DatabaseStatus{Healthy: true}

	stats, err := db.GetStats()
	if err != nil {
		h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
		stats = &database.Stats{Name: db.Name()}
	}
	status.Stats = stats

	if err := db.HealthCheck(ctx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
	}
	return status
}

// getSystemStats samples CPU over 100ms and reads RAM usage
func (h *SystemHandlers) getSystemStats() (float64, float64) {
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

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
