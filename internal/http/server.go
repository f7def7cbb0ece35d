// Package http exposes the ledger operations over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"coopledger/internal/middleware/trace"
	"coopledger/internal/services"
)

type Server struct {
	http.Server

	loans         *services.LoanService
	contributions *services.ContributionService
	cash          *services.CashService
	reports       *services.ReportService

	rateLimiter *rateLimiter
	trace       *trace.Middleware

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 120 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 120
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, loans *services.LoanService, contributions *services.ContributionService, cash *services.CashService, reports *services.ReportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		loans:         loans,
		contributions: contributions,
		cash:          cash,
		reports:       reports,
		rateLimiter:   newRateLimiter(),
		trace:         trace.NewMiddleware(clientIP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /members", s.handleSeedMember)

	mux.HandleFunc("POST /amortization", s.handleComputeAmortization)
	mux.HandleFunc("POST /loans", s.handleCreateLoan)
	mux.HandleFunc("GET /loans", s.handleListLoans)
	mux.HandleFunc("GET /loans/{id}", s.handleGetLoan)
	mux.HandleFunc("POST /loans/{id}/payments", s.handleRecordPayment)
	mux.HandleFunc("GET /loans/{id}/payments", s.handleListPayments)
	mux.HandleFunc("PATCH /loans/{id}/payments/{paymentID}", s.handleUpdatePayment)
	mux.HandleFunc("DELETE /loans/{id}/payments/{paymentID}", s.handleDeletePayment)

	mux.HandleFunc("POST /contributions", s.handleRecordContribution)
	mux.HandleFunc("GET /contributions", s.handleListContributions)
	mux.HandleFunc("GET /contributions/{id}", s.handleGetContribution)
	mux.HandleFunc("PATCH /contributions/{id}", s.handleUpdateContribution)
	mux.HandleFunc("DELETE /contributions/{id}", s.handleDeleteContribution)

	mux.HandleFunc("POST /cash-entries", s.handleRecordCashEntry)
	mux.HandleFunc("GET /cash-entries", s.handleListCashEntries)
	mux.HandleFunc("GET /cash-entries/{id}", s.handleGetCashEntry)
	mux.HandleFunc("PATCH /cash-entries/{id}", s.handleUpdateCashEntry)
	mux.HandleFunc("DELETE /cash-entries/{id}", s.handleDeleteCashEntry)

	mux.HandleFunc("POST /reports/preview", s.handleGenerateReport)
	mux.HandleFunc("POST /reports", s.handleSaveReport)
	mux.HandleFunc("GET /reports", s.handleListReports)
	mux.HandleFunc("GET /reports/{id}", s.handleGetReport)
	mux.HandleFunc("DELETE /reports/{id}", s.handleDeleteReport)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.trace.Middleware(s.withProtection(mux)),
	}

	return s
}

// withProtection applies rate limiting to mutating requests and sets response
// hardening headers on everything.
func (s *Server) withProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
