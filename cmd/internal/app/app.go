package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"wayfare/cmd/identity"
	authapi "wayfare/cmd/internal/auth/api"
	"wayfare/cmd/security/password"
	"wayfare/cmd/security/token"
)

// App wires storage, the identity service and the HTTP surface into a
// runnable server.
type App struct {
	cfg Config
	log *slog.Logger

	store   identity.Store
	pingDB  func(ctx context.Context) error
	closers []func(ctx context.Context) error

	metrics *Metrics
	handler http.Handler
}

// New builds the application. It fails fast on configuration problems
// so a bad deployment never starts serving.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	if err := a.initStore(ctx); err != nil {
		return nil, err
	}

	if cfg.DBMigrate {
		log.LogAttrs(ctx, slog.LevelInfo, "db.migrate.start")
		if err := a.store.EnsureIndexes(ctx); err != nil {
			a.closeAll(ctx)
			return nil, fmt.Errorf("app: migrate: %w", err)
		}
		log.LogAttrs(ctx, slog.LevelInfo, "db.migrate.done")
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		a.closeAll(ctx)
		return nil, fmt.Errorf("app: password config: %w", err)
	}

	tokCfg, err := token.LoadConfigFromEnv()
	if err != nil {
		a.closeAll(ctx)
		return nil, fmt.Errorf("app: token config: %w", err)
	}
	tokens, err := token.NewManager(tokCfg)
	if err != nil {
		a.closeAll(ctx)
		return nil, fmt.Errorf("app: token manager: %w", err)
	}
	log.LogAttrs(ctx, slog.LevelInfo, "auth.tokens.ready",
		slog.String("issuer", tokCfg.Issuer),
		slog.Duration("ttl", tokens.TTL()))

	svc, err := identity.NewService(a.store, pwCfg, log)
	if err != nil {
		a.closeAll(ctx)
		return nil, fmt.Errorf("app: identity service: %w", err)
	}

	apiCfg := authapi.LoadConfigFromEnv()
	auth, err := authapi.NewHandler(log, apiCfg, svc, tokens)
	if err != nil {
		a.closeAll(ctx)
		return nil, fmt.Errorf("app: auth api: %w", err)
	}

	a.metrics = NewMetrics()
	a.handler = a.buildHandler(auth)
	return a, nil
}

// initStore selects the storage engine from the database URL scheme.
// An empty URL falls back to the in-memory store for development.
func (a *App) initStore(ctx context.Context) error {
	url := a.cfg.DatabaseURL
	switch {
	case url == "":
		a.log.LogAttrs(ctx, slog.LevelWarn, "db.disabled.inmemory_store")
		a.store = identity.NewMemoryStore()
		return nil

	case strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://"):
		pool, err := NewPgxPool(ctx, a.cfg)
		if err != nil {
			return err
		}
		if err := PingPgx(ctx, pool); err != nil {
			pool.Close()
			return err
		}
		store, err := identity.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return err
		}
		a.store = store
		a.pingDB = func(ctx context.Context) error { return PingPgx(ctx, pool) }
		a.closers = append(a.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		a.log.LogAttrs(ctx, slog.LevelInfo, "db.connected", slog.String("engine", "postgres"))
		return nil

	case strings.HasPrefix(url, "mongodb://") || strings.HasPrefix(url, "mongodb+srv://"):
		client, err := NewMongoClient(a.cfg)
		if err != nil {
			return err
		}
		if err := PingMongo(ctx, client); err != nil {
			_ = client.Disconnect(ctx)
			return err
		}
		db := client.Database(a.cfg.MongoDBName)
		store, err := identity.NewMongoStore(db)
		if err != nil {
			_ = client.Disconnect(ctx)
			return err
		}
		a.store = store
		a.pingDB = func(ctx context.Context) error { return PingMongo(ctx, client) }
		a.closers = append(a.closers, client.Disconnect)
		a.log.LogAttrs(ctx, slog.LevelInfo, "db.connected",
			slog.String("engine", "mongodb"),
			slog.String("database", a.cfg.MongoDBName))
		return nil

	default:
		return fmt.Errorf("app: unsupported database url scheme")
	}
}

func (a *App) closeAll(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.LogAttrs(ctx, slog.LevelWarn, "app.close_failed", slog.String("err", err.Error()))
		}
	}
}
