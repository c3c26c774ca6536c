package httpapp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"notaFacilBot/invoice-bot/internal/http/handler"
	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Port           int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout        time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"30s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
	RateLimit      RateConfig    `yaml:"rate_limit"`
}

type App struct {
	log        *slog.Logger
	httpServer *http.Server
	port       int
}

// SessionCounter отдаёт число живых сессий для метрики.
type SessionCounter interface {
	Len() int
}

type SessionStore interface {
	handler.SessionStore
	SessionCounter
}

func New(
	log *slog.Logger,
	config *Config,
	store SessionStore,
	history handler.HistorySearcher,
	secret []byte,
	tokenTTL time.Duration,
) *App {
	router := http.NewServeMux()

	router.HandleFunc(
		"POST /api/sessions",
		handler.CreateSessionHandler(log, store, secret, tokenTTL),
	)

	router.HandleFunc(
		"GET /api/sessions/state",
		handler.GetSessionStateHandler(log, store, secret),
	)

	router.HandleFunc(
		"POST /api/sessions/answer",
		handler.SubmitAnswerHandler(log, store, secret),
	)

	router.HandleFunc(
		"POST /api/sessions/keypress",
		handler.KeyPressHandler(log, store, secret),
	)

	router.HandleFunc(
		"PUT /api/sessions/notifications",
		handler.UpdateNotificationsHandler(log, store, secret),
	)

	router.HandleFunc(
		"DELETE /api/sessions",
		handler.CloseSessionHandler(log, store, secret),
	)

	// История нот
	router.HandleFunc(
		"GET /api/invoices",
		handler.GetInvoicesHandler(log, history),
	)

	registry := prometheus.NewRegistry()
	metrics := newMetrics(registry, store)

	router.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	limiter := newLimiterPool(config.RateLimit)

	var h http.Handler = router
	h = rateLimitMiddleware(log, limiter, h)
	h = metrics.middleware(router, h)
	h = corsMiddleware(config.AllowedOrigins, h)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(config.Port),
		Handler:      h,
		IdleTimeout:  time.Minute,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	}

	return &App{log: log, httpServer: srv, port: config.Port}
}

// Handler нужен тестам, чтобы гонять запросы без сети.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "httpapp.Run"

	a.log.With(slog.String("op", op)).
		Info("server started", slog.Int("port", a.port))

	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.log.Error("failed to start http server", sl.Err(err))
		return err
	}

	return nil
}

func (a *App) Stop() {
	const op = "httpapp.Stop"

	a.log.With(slog.String("op", op)).
		Info("stopping HTTP server", slog.Int("port", a.port))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("server closed with error", sl.Err(err))
		return
	}

	a.log.Info("Gracefully stopped")
}

func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowedOrigins[o] = true
	}

	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// CORS заголовки только для разрешенных origins
			if allowedOrigins[origin] || allowedOrigins["*"] {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set(
					"Access-Control-Allow-Methods",
					"GET, POST, OPTIONS, PUT, DELETE",
				)
				w.Header().Set(
					"Access-Control-Allow-Headers",
					"Origin, Content-Type, Authorization, Accept",
				)
				w.Header().Set("Access-Control-Max-Age", "43200")
			}

			w.Header().Set(
				"Cache-Control",
				"no-store, no-cache, must-revalidate, private",
			)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		},
	)
}
