package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/services"
	"bilancio/internal/workflow"
)

// Options tunes the middleware chain. Zero values pick the defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	// TrustedProxies lists extra CIDRs whose X-Forwarded-For is honored.
	TrustedProxies []string
}

type Server struct {
	http.Server
	svc      *services.TransactionService
	composer *workflow.Composer
	filter   *filterState
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// filterState is the stored filter criteria of the single user.
type filterState struct {
	mu sync.RWMutex
	c  core.Criteria
}

func (f *filterState) get() core.Criteria {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.c
}

func (f *filterState) set(c core.Criteria) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c = c
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.TransactionService, composer *workflow.Composer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	ips := security.NewIPExtractor()
	for _, cidr := range opts.TrustedProxies {
		if err := ips.AddTrustedProxy(cidr); err != nil {
			opts.Logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}

	s := &Server{
		svc:      svc,
		composer: composer,
		filter:   &filterState{},
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(ips.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/export", s.handleExport)

	mux.HandleFunc("GET /api/filter", s.handleGetFilter)
	mux.HandleFunc("PUT /api/filter", s.handleSetFilter)
	mux.HandleFunc("DELETE /api/filter", s.handleClearFilter)

	mux.HandleFunc("GET /api/composer", s.handleComposerState)
	mux.HandleFunc("POST /api/composer/new", s.handleComposerNew)
	mux.HandleFunc("POST /api/composer/edit/{id}", s.handleComposerEdit)
	mux.HandleFunc("PATCH /api/composer", s.handleComposerChange)
	mux.HandleFunc("POST /api/composer/submit", s.handleComposerSubmit)
	mux.HandleFunc("DELETE /api/composer", s.handleComposerCancel)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(ips.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests, try again later.").Write(w)
	})

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(opts.Logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// TotalRequests is the number of requests served so far.
func (s *Server) TotalRequests() int64 {
	return s.tracer.TotalRequests()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.Balance(r.Context()); err != nil {
		log.FromContext(r.Context()).Error("Readiness check failed", "error", err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
