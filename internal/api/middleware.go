package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mnedge/emulator/internal/mobility"
	"github.com/mnedge/emulator/internal/requestlog"
)

func isInvariantViolation(err error) bool {
	return errors.Is(err, mobility.ErrInvariantViolation)
}

// RequestBodyLimitMiddleware caps the request body size next sees; handlers
// surface the overflow via DecodeBody's requestBodyTooLargeError.
func RequestBodyLimitMiddleware(maxBytes int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware applies permissive CORS: this is a test harness, not a
// multi-tenant production service.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs method, path, status, and duration for every
// request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Printf("[api] %s %s %d %s", r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequestLogMiddleware records each request's method, path, status, and
// duration into a requestlog.Repo, separate from the human-facing
// LoggingMiddleware output: this is the machine-queryable history behind
// the supplemental request-log endpoints. A nil repo makes this a no-op so
// callers can wire it unconditionally.
func RequestLogMiddleware(repo *requestlog.Repo, next http.Handler) http.Handler {
	if repo == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		entry := requestlog.Entry{
			TimestampNs: start.UnixNano(),
			Method:      r.Method,
			Path:        r.URL.Path,
			Status:      sw.status,
			DurationNs:  time.Since(start).Nanoseconds(),
		}
		if err := repo.Record(context.Background(), entry); err != nil {
			log.Printf("[api] request log: %v", err)
		}
	})
}

// RecoveryMiddleware converts a panic into a 500 response, except for a
// mobility.ErrInvariantViolation panic, which exits the process via
// log.Fatalf: re-panicking would only be recovered again by net/http's own
// per-connection handler, leaving the process running.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if err, ok := rec.(error); ok && isInvariantViolation(err) {
					log.Fatalf("[api] %s %s: %v", r.Method, r.URL.Path, err)
				}
				log.Printf("[api] panic handling %s %s: %v", r.Method, r.URL.Path, rec)
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
