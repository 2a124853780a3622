package api

import (
	"net/http"
	"strconv"

	"github.com/mnedge/emulator/internal/buildinfo"
	"github.com/mnedge/emulator/internal/metrics"
	"github.com/mnedge/emulator/internal/requestlog"
)

type systemInfoResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// HandleSystemInfo serves GET /system/info.
func HandleSystemInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, systemInfoResponse{
			Version:   buildinfo.Version,
			GitCommit: buildinfo.GitCommit,
			BuildTime: buildinfo.BuildTime,
		})
	}
}

// HandleMetricsSummary serves GET /metrics/summary.
func HandleMetricsSummary(m *metrics.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, m.Summary())
	}
}

// HandleRecentRequests serves GET /system/requests: the most recent API
// calls recorded by RequestLogMiddleware.
func HandleRecentRequests(repo *requestlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}
		entries, err := repo.Recent(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
			return
		}
		WriteJSON(w, http.StatusOK, entries)
	}
}
