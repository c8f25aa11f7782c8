// Package http exposes the JSON API: analytics and insight reads, expense
// and budget writes, health probes. Authentication is a trusted X-User-ID
// header set by the fronting proxy.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendsight/internal/analytics"
	"spendsight/internal/insights"
	"spendsight/internal/services"
)

var timeNow = time.Now

type Server struct {
	http.Server

	analytics *analytics.Service
	insights  *insights.Service
	expenses  *services.ExpenseService
	budgets   *services.BudgetService

	limiter      *rateLimiter
	cache        *responseCache
	logger       *slog.Logger
	shutdownOnce sync.Once
}

// NewServer wires every route onto a fresh mux. The response cache covers
// the GET analytics and insight endpoints; every write clears it.
func NewServer(addr string, as *analytics.Service, is *insights.Service, es *services.ExpenseService, bs *services.BudgetService) (*Server, error) {
	cache, err := newResponseCache()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	s := &Server{
		Server:    http.Server{Addr: addr, Handler: mux},
		analytics: as,
		insights:  is,
		expenses:  es,
		budgets:   bs,
		limiter:   newRateLimiter(),
		cache:     cache,
		logger:    slog.Default().With("component", "http"),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	api := func(h http.HandlerFunc) http.HandlerFunc {
		return s.withCommon(s.requireUser(h))
	}
	cached := func(h http.HandlerFunc) http.HandlerFunc {
		return api(s.withCache(h))
	}

	mux.HandleFunc("GET /api/analytics/monthly", cached(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/analytics/trends", cached(s.handleTrends))
	mux.HandleFunc("GET /api/analytics/categories", cached(s.handleCategoryBreakdown))
	mux.HandleFunc("GET /api/analytics/comparison", cached(s.handleComparison))
	mux.HandleFunc("GET /api/analytics/forecast", cached(s.handleForecast))

	mux.HandleFunc("GET /api/insights", cached(s.handleInsights))
	mux.HandleFunc("GET /api/insights/anomalies", cached(s.handleAnomalies))
	mux.HandleFunc("GET /api/insights/categories/{category}", cached(s.handleCategoryInsights))
	mux.HandleFunc("POST /api/insights/chat", api(s.handleChat))
	mux.HandleFunc("GET /api/insights/history", api(s.handleInsightHistory))

	mux.HandleFunc("GET /api/expenses", api(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", api(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", api(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", api(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", api(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/budgets", api(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", api(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets/{id}", api(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", api(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", api(s.handleDeleteBudget))

	return s, nil
}

// Shutdown stops the HTTP server and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withCommon adds request IDs, security headers, rate limiting on writes,
// and request logging.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.limiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestID, "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Request-ID", requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// requireUser rejects requests without the X-User-ID header.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get("X-User-ID")
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyOwner, owner)
		next(w, r.WithContext(ctx))
	}
}

// withCache serves GET responses from the response cache, keyed per owner
// and URL. Only 200 responses are stored.
func (s *Server) withCache(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := ownerFrom(r) + "|" + r.URL.RequestURI()
		if body, ok := s.cache.Get(key); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("X-Cache", "hit")
			_, _ = w.Write(body)
			return
		}

		rec := &recordingWriter{responseWriter: responseWriter{ResponseWriter: w, statusCode: http.StatusOK}}
		next(rec, r)
		if rec.statusCode == http.StatusOK && len(rec.body) > 0 {
			s.cache.Set(key, rec.body)
		}
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type recordingWriter struct {
	responseWriter
	body []byte
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body = append(rw.body, b...)
	return rw.ResponseWriter.Write(b)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
