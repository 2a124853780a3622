// Package api implements the control-plane HTTP API: a thin JSON transport
// over EmulatorService. CORS is permissive by design (this is a test
// harness); there is no authentication.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mnedge/emulator/internal/metrics"
	"github.com/mnedge/emulator/internal/requestlog"
	"github.com/mnedge/emulator/internal/service"
)

// Server wraps the HTTP server and mux for the emulator's control-plane API.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// Config configures NewServer.
type Config struct {
	Port            int
	APIMaxBodyBytes int64
	Service         *service.EmulatorService
	Metrics         *metrics.Manager
	RequestLog      *requestlog.Repo
}

// NewServer builds a Server wired with every core control-plane route plus
// the supplemental system/metrics routes.
func NewServer(cfg Config) *Server {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", HandleHealthz())
	mux.Handle("GET /system/info", HandleSystemInfo())
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics/summary", HandleMetricsSummary(cfg.Metrics))
	}
	if cfg.RequestLog != nil {
		mux.Handle("GET /system/requests", HandleRecentRequests(cfg.RequestLog))
	}

	svc := cfg.Service
	mux.Handle("GET /network/edge_data_centers", HandleListEDCs(svc))
	mux.Handle("GET /network/edge_data_centers/{edc_id}/applications", HandleListApplications(svc))
	mux.Handle("POST /network/edge_data_centers/{edc_id}/applications/{app_id}", HandleAddApplication(svc))
	mux.Handle("DELETE /network/edge_data_centers/{edc_id}/applications/{app_id}", HandleRemoveApplication(svc))
	mux.Handle("GET /network/edge_data_centers/{edc_id}/applications/{app_id}/total_usages", HandleTotalUsages(svc))

	mux.Handle("GET /mobile_network/users", HandleListUsers(svc))
	mux.Handle("GET /mobile_network/connected_users", HandleListConnectedUsers(svc))
	mux.Handle("GET /mobile_network/rans", HandleListRadioCells(svc))
	mux.Handle("POST /mobile_network/update_user_positions", HandleUpdateUserPositions(svc))

	mux.Handle("GET /mobile_network_exposure/events", HandleListEvents(svc))
	mux.Handle("GET /mobile_network_exposure/subscribers", HandleListSubscribers(svc))
	mux.Handle("POST /mobile_network_exposure/subscribers", HandleAddSubscriber(svc))
	mux.Handle("POST /mobile_network_exposure/events/publish", HandlePublishEvents(svc))

	limited := RequestBodyLimitMiddleware(cfg.APIMaxBodyBytes, mux)
	logged := RequestLogMiddleware(cfg.RequestLog, limited)
	handler := CORSMiddleware(LoggingMiddleware(RecoveryMiddleware(logged)))

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: handler,
		},
		handler: handler,
	}
}

// ListenAndServe starts the HTTP server. It blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the fully wrapped http.Handler (with middleware) for
// testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
