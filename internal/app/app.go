package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/progress-engine/internal/data/aggregates"
	"github.com/yungbote/progress-engine/internal/data/db"
	"github.com/yungbote/progress-engine/internal/data/repos"
	httpapi "github.com/yungbote/progress-engine/internal/http"
	httpH "github.com/yungbote/progress-engine/internal/http/handlers"
	httpMW "github.com/yungbote/progress-engine/internal/http/middleware"
	"github.com/yungbote/progress-engine/internal/modules/analytics"
	"github.com/yungbote/progress-engine/internal/modules/progress"
	"github.com/yungbote/progress-engine/internal/observability"
	"github.com/yungbote/progress-engine/internal/platform/authtoken"
	"github.com/yungbote/progress-engine/internal/platform/keylock"
	"github.com/yungbote/progress-engine/internal/platform/logger"
)

type store interface {
	DB() *gorm.DB
	Close() error
}

// Services is the engine without a transport. The CLI uses it directly.
type Services struct {
	Progress  progress.Usecases
	Analytics analytics.Usecases
}

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Metrics  *observability.Metrics
	Services Services
	Server   *httpapi.Server

	store        store
	redis        *goredis.Client
	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

// NewServices opens the store and builds both modules. It does not touch
// HTTP, auth or tracing.
func NewServices(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	bgCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	st, err := openStore(log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = st
	a.DB = st.DB()

	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(a.DB); err != nil {
			a.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	a.Metrics = observability.Init(cfg.Metrics, log)
	a.Metrics.StartDBCollector(bgCtx, log, a.DB, 0)

	var locker keylock.Locker = keylock.NewLocal()
	if cfg.RedisAddr != "" {
		rdb, err := keylock.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = rdb
		locker = keylock.NewRedis(rdb, log, keylock.RedisOptions{TTL: cfg.LockTTL})
		a.Metrics.StartRedisCollector(bgCtx, log, rdb, 0)
		log.Info("progress writes serialized through redis", "addr", cfg.RedisAddr)
	}

	set := repos.NewSet(a.DB, log)
	writer := aggregates.NewWriter(aggregates.BaseDeps{
		DB:     a.DB,
		Log:    log,
		Hooks:  aggregates.NewObservabilityHooks(a.Metrics),
		Locker: locker,
	})
	a.Services = Services{
		Progress: progress.New(progress.UsecasesDeps{
			DB:      a.DB,
			Log:     log,
			Repos:   set,
			Writer:  writer,
			Metrics: a.Metrics,
			Rates:   cfg.Rates,
			Theory:  cfg.Theory,
		}),
		Analytics: analytics.New(analytics.UsecasesDeps{
			Log:     log,
			Repos:   set,
			Metrics: a.Metrics,
		}),
	}
	return a, nil
}

// New is NewServices plus tracing and the HTTP server.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}
	verifier, err := authtoken.NewVerifier(cfg.JWTSecret, cfg.JWTLeeway)
	if err != nil {
		return nil, err
	}
	a, err := NewServices(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	traceService := ""
	if cfg.Otel.Enabled {
		traceService = cfg.Otel.ServiceName
	}
	a.Server = httpapi.NewServer(httpapi.RouterConfig{
		Log:              log,
		Metrics:          a.Metrics,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, verifier),
		CORSOrigins:      cfg.CORSOrigins,
		TraceService:     traceService,
		LedgerHandler:    httpH.NewLedgerHandler(a.Services.Progress),
		ProgressHandler:  httpH.NewProgressHandler(a.Services.Progress, a.Services.Analytics),
		ChallengeHandler: httpH.NewChallengeHandler(a.Services.Progress),
		AdminHandler:     httpH.NewAdminHandler(a.Services.Analytics, a.Services.Progress),
		HealthHandler:    httpH.NewHealthHandler(a.DB),
	})
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.Server == nil {
		return errors.New("app built without a server")
	}
	return a.Server.Run(ctx, a.Cfg.Addr, a.Cfg.ShutdownWait)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("store close failed", "error", err)
		}
	}
}

func openStore(log *logger.Logger, cfg Config) (store, error) {
	switch cfg.StoreDriver {
	case StoreSQLite:
		return db.NewSQLiteService(cfg.SQLitePath, log)
	default:
		return db.NewPostgresService(cfg.Postgres, log)
	}
}
