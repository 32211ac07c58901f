package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"pft/internal/app"
	"pft/internal/finance"
	"pft/internal/log"
	"pft/internal/middleware/ratelimit"
	"pft/internal/middleware/security"
	"pft/internal/middleware/trace"
	appweb "pft/web"
)

// Server hosts the tracker UI. It embeds http.Server so callers can use
// ListenAndServe directly.
type Server struct {
	http.Server

	tracker  *app.Tracker
	ready    finance.DashboardReader
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	started  time.Time

	shutdownOnce sync.Once
}

// Options tunes the server. Zero values pick the defaults.
type Options struct {
	RateLimitRPM int
	Logger       *log.Logger
}

// NewServer wires routes and middleware. ready is probed by /readyz.
func NewServer(addr string, tracker *app.Tracker, ready finance.DashboardReader, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		tracker:  tracker,
		ready:    ready,
		logger:   logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		detector: security.NewDetector(),
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /ui/sections/{name}", s.handleSwitchSection)
	mux.HandleFunc("GET /ui/{name}", s.handleLoadSection)
	mux.HandleFunc("POST /ui/expenses", s.handleAddExpense)
	mux.HandleFunc("POST /ui/income", s.handleAddIncome)
	mux.HandleFunc("DELETE /ui/alert", s.handleDismissAlert)
	mux.HandleFunc("GET /students", s.handleStudents)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded", log.FieldClientIP, s.detector.ClientIP(r), log.FieldPath, r.URL.Path)
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
	}

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ClientIP, onLimit, http.MethodPost)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = s.detector.Middleware(handler)
	handler = trace.NewMiddleware(logger, s.detector.ClientIP).Handler(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
