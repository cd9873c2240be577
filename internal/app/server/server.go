package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"perfeval/internal/domain/assessment"
	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/directory"
	"perfeval/internal/domain/kpi"
	"perfeval/internal/domain/notifications"
	"perfeval/internal/domain/stats"
	"perfeval/internal/domain/values"
	"perfeval/internal/platform/cache"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/db"
	"perfeval/internal/platform/email"
	"perfeval/internal/platform/metrics"
	"perfeval/internal/platform/querier"
	"perfeval/internal/transport/http/api"
	assessmenthandler "perfeval/internal/transport/http/handlers/assessment"
	audithandler "perfeval/internal/transport/http/handlers/audit"
	kpihandler "perfeval/internal/transport/http/handlers/kpi"
	notificationshandler "perfeval/internal/transport/http/handlers/notifications"
	valueshandler "perfeval/internal/transport/http/handlers/values"
	"perfeval/internal/transport/http/middleware"
)

const cachePrefix = "perfeval:stats:"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the dependencies the HTTP surface is built from.
type Services struct {
	KPIs          kpihandler.Service
	Values        valueshandler.Service
	Assessments   assessmenthandler.Service
	Notifications notificationshandler.Service
	Audit         *audit.Service
	Metrics       *metrics.Collector
	DB            Pinger
}

type App struct {
	Config config.Config
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Router http.Handler
}

// New connects to the database and optional redis, applies migrations and
// seed data when configured, and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Pool: pool}

	if cfg.RunMigrations {
		applied, err := db.Migrate(ctx, pool, os.DirFS(cfg.MigrationsDir))
		if err != nil {
			app.Close()
			return nil, eris.Wrap(err, "server: migrate")
		}
		zap.L().Info("migrations applied", zap.Int("count", applied))
	}
	if cfg.RunSeed {
		seeded, err := db.Seed(ctx, pool)
		if err != nil {
			app.Close()
			return nil, eris.Wrap(err, "server: seed")
		}
		zap.L().Info("seed data loaded", zap.Int("values", seeded))
	}

	var statsCache stats.Cache
	if cfg.RedisAddr != "" {
		client, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			zap.L().Warn("redis unavailable, statistics are not cached", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			app.Redis = client
			statsCache = cache.NewJSONCache(client, cachePrefix)
		}
	}

	templates, err := notifications.LoadTemplates(cfg.NotificationTemplates)
	if err != nil {
		app.Close()
		return nil, eris.Wrap(err, "server: load notification templates")
	}

	app.Router = NewRouter(cfg, BuildServices(cfg, pool, statsCache, templates))
	return app, nil
}

// BuildServices wires the domain services on top of one SQL connection.
func BuildServices(cfg config.Config, pool querier.Querier, statsCache stats.Cache, templates notifications.Templates) Services {
	collector := metrics.New()
	auditSvc := audit.New(pool)
	statsSvc := stats.NewService(stats.NewStore(pool), statsCache, cfg.StatsCacheTTL)
	notifySvc := notifications.New(notifications.NewStore(pool), templates, email.New(cfg), cfg.EmailFrom)

	services := Services{
		KPIs:          kpi.NewService(kpi.NewStore(pool), auditSvc, statsSvc),
		Values:        values.NewService(values.NewStore(pool), auditSvc, statsSvc),
		Assessments:   assessment.NewService(assessment.NewStore(pool), directory.NewStore(pool), notifySvc, auditSvc, collector),
		Notifications: notifySvc,
		Audit:         auditSvc,
		Metrics:       collector,
	}
	if p, ok := pool.(Pinger); ok {
		services.DB = p
	}
	return services
}

func NewRouter(cfg config.Config, svc Services) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(svc.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.DB == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := svc.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && svc.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, svc.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.WorkflowRateLimit(cfg.RateLimitPerMinute, time.Minute))

		kpihandler.NewHandler(svc.KPIs).RegisterRoutes(r)
		valueshandler.NewHandler(svc.Values).RegisterRoutes(r)

		var history assessmenthandler.History
		if svc.Audit != nil {
			history = svc.Audit
		}
		assessmenthandler.NewHandler(svc.Assessments, history).RegisterRoutes(r)
		notificationshandler.NewHandler(svc.Notifications).RegisterRoutes(r)
		if svc.Audit != nil {
			audithandler.NewHandler(svc.Audit).RegisterRoutes(r)
		}
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("perfeval server listening", zap.String("addr", a.Config.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	zap.L().Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			zap.L().Warn("redis close failed", zap.Error(err))
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
