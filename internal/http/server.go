package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"walletwhisper/internal/cache"
	"walletwhisper/internal/core"
	"walletwhisper/internal/log"
	"walletwhisper/internal/metrics"
	"walletwhisper/internal/middleware/ratelimit"
	"walletwhisper/internal/middleware/security"
	"walletwhisper/internal/middleware/trace"
	"walletwhisper/internal/services"
	appweb "walletwhisper/web"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server to the rest of the application.
type Options struct {
	Wallet *services.Wallet
	Store  Pinger
	// Metrics records per-route request counts and latencies.
	Metrics metrics.Recorder
	// Gatherer backs /metrics; nil serves the default registry.
	Gatherer     prometheus.Gatherer
	Logger       *log.Logger
	RateLimitRPM int
	// Caches, when set, gets the rate limiter registered for expiry.
	Caches *cache.Manager
}

type Server struct {
	http.Server
	templates *template.Template
	wallet    *services.Wallet
	store     Pinger
	metrics   metrics.Recorder
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and builds the router.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Wallet == nil {
		return nil, fmt.Errorf("wallet is required")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		wallet:    opts.Wallet,
		store:     opts.Store,
		metrics:   opts.Metrics,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		detector:  security.NewDetector(opts.Logger),
		started:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ClientIP)
	if opts.Caches != nil {
		opts.Caches.Register(s.limiter)
	}

	r := mux.NewRouter()
	r.Use(s.instrument)
	r.Use(s.tracer.Middleware)
	r.Use(s.detector.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware(s.detector.ClientIP, ratelimit.MutationsOnly, s.onRateLimited))

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	} else {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssets(3600)(static))
	} else {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/balance/edit", s.handleEditBalance).Methods(http.MethodGet)
	r.HandleFunc("/balance", s.handleCommitBalance).Methods(http.MethodPost)
	r.HandleFunc("/priorities/{id:[0-9]+}/toggle", s.handleTogglePriority).Methods(http.MethodPost)

	r.HandleFunc("/transactions", s.handleTransactions).Methods(http.MethodGet)
	r.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)

	r.HandleFunc("/savings", s.handleSavings).Methods(http.MethodGet)
	r.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id:[0-9]+}/contribute", s.handleContribute).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id:[0-9]+}/lock", s.handleToggleLock).Methods(http.MethodPost)

	r.HandleFunc("/reminders", s.handleReminders).Methods(http.MethodGet)
	r.HandleFunc("/reminders", s.handleCreateReminder).Methods(http.MethodPost)
	r.HandleFunc("/reminders/{id:[0-9]+}/paid", s.handleMarkPaid).Methods(http.MethodPost)
	r.HandleFunc("/reminders/{id:[0-9]+}/notification", s.handleToggleNotification).Methods(http.MethodPost)

	r.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)

	r.HandleFunc("/settings", s.handleSettings).Methods(http.MethodGet)
	r.HandleFunc("/settings/profile", s.handleUpdateProfile).Methods(http.MethodPost)
	r.HandleFunc("/settings/currency", s.handleSetCurrency).Methods(http.MethodPost)
	r.HandleFunc("/settings/theme", s.handleSetTheme).Methods(http.MethodPost)
	r.HandleFunc("/settings/passcode", s.handleSetPasscode).Methods(http.MethodPost)
	r.HandleFunc("/settings/export", s.handleExport).Methods(http.MethodPost)
	r.HandleFunc("/settings/reset-balance", s.handleResetBalance).Methods(http.MethodPost)
	r.HandleFunc("/settings/clear-transactions", s.handleClearTransactions).Methods(http.MethodPost)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		total, inFlight := s.tracer.Stats()
		s.logger.InfoContext(ctx, "HTTP server shutting down",
			log.FieldOperation, log.OpShutdown,
			"requests_served", total,
			"in_flight", inFlight)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// instrument records every request against its route template so that
// /goals/1/lock and /goals/2/lock share one series.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := trace.NewStatusWriter(w)
		next.ServeHTTP(sw, r)
		s.metrics.RecordHTTP(routeTemplate(r), r.Method, sw.Status(), time.Since(start))
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.requestLogger(r, log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerNotification(core.NotifyError("Too many requests. Please wait a moment and try again")).
		Write(w)
}

var templateFuncs = template.FuncMap{
	"money": core.FormatMoney,
	"date": func(d core.Date) string {
		return d.Format("Jan 2, 2006")
	},
	"categories":         func() []core.Category { return core.Categories },
	"reminderCategories": func() []core.ReminderCategory { return core.ReminderCategories },
	"currencies":         func() []core.Currency { return core.Currencies },
	"lower": func(v any) string {
		return strings.ToLower(fmt.Sprint(v))
	},
}
