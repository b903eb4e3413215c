// Package http serves the JSON API: the ledger, categories, period reports
// and charts, and transaction creation.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"catatan/internal/cache"
	"catatan/internal/finance"
	applog "catatan/internal/log"
	"catatan/internal/middleware/ratelimit"
	"catatan/internal/middleware/security"
	"catatan/internal/middleware/trace"
	"catatan/internal/report"
)

const (
	requestTimeout = 7 * time.Second
	readyTimeout   = 2 * time.Second
	maxBodyBytes   = 64 << 10
	cacheEntries   = 100
)

// Deps are the collaborators of the server.
type Deps struct {
	Finance *finance.Service
	// Ready reports whether the store answers; nil means always ready.
	Ready func(ctx context.Context) error
	// ReportCacheTTL of zero disables report and chart caching.
	ReportCacheTTL time.Duration
	RateLimit      ratelimit.Config
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	finance *finance.Service
	ready   func(ctx context.Context) error
	logger  *applog.Logger

	// cacheMu orders cache writes against invalidation; generation counts
	// invalidations so results computed from an older snapshot are dropped.
	cacheMu      sync.Mutex
	generation   uint64
	reports      *cache.LRUCache[report.Report]
	charts       *cache.LRUCache[report.ChartSection]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}
	svc := deps.Finance
	if svc == nil {
		svc = finance.New(nil, nil)
	}

	s := &Server{
		finance:      svc,
		ready:        deps.Ready,
		logger:       logger,
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(deps.RateLimit),
		detector:     security.NewDetector(),
	}
	if deps.ReportCacheTTL > 0 {
		s.reports = cache.NewLRUCache[report.Report](cacheEntries, deps.ReportCacheTTL)
		s.charts = cache.NewLRUCache[report.ChartSection](cacheEntries, deps.ReportCacheTTL)
		s.cacheManager.Register(s.reports)
		s.cacheManager.Register(s.charts)
		s.cacheManager.StartCleanup(deps.ReportCacheTTL * 5)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/finance", s.handleFinance)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/periods", s.handlePeriods)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// middleware is, outermost first: trace, security headers, suspicious
// request detection, rate limit on POST.
func (s *Server) middleware(next http.Handler) http.Handler {
	onlyWrites := func(r *http.Request) bool { return r.Method == http.MethodPost }
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusTooManyRequests, "Terlalu banyak permintaan, coba lagi nanti")
	}

	h := s.limiter.Middleware(s.detector.ExtractClientIP, onlyWrites, onLimit)(next)
	h = s.detector.Middleware(h)
	h = security.NoStore(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP).Middleware(h)
	return h
}

// Invalidate drops every cached report and chart. Results still being
// computed from data read before the call are not cached.
func (s *Server) Invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if s.reports != nil {
		s.reports.Purge()
	}
	if s.charts != nil {
		s.charts.Purge()
	}
}

// cacheGeneration is read before loading the data a cached value is built from.
func (s *Server) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// storeIfCurrent runs set unless the caches were invalidated since gen.
func (s *Server) storeIfCurrent(gen uint64, set func()) bool {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != gen {
		return false
	}
	set()
	return true
}

// Shutdown stops background goroutines and the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
