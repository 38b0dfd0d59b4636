package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/booking-admin/internal/application"
	"github.com/example/booking-admin/internal/config"
	"github.com/example/booking-admin/internal/fixture"
	"github.com/example/booking-admin/internal/gateway"
	httptransport "github.com/example/booking-admin/internal/http"
	"github.com/example/booking-admin/internal/persistence"
	"github.com/example/booking-admin/internal/persistence/redis"
	"github.com/example/booking-admin/internal/persistence/sqlite"
	"github.com/example/booking-admin/internal/session"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("dashboard stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("dashboard listening", "addr", server.Addr, "api", cfg.APIBaseURL, "token_store", string(cfg.TokenStore))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// app is the wired dashboard: the HTTP handler plus what must be released on
// shutdown.
type app struct {
	handler  http.Handler
	holder   *session.Holder
	catalogs *application.Catalogs
	closers  []func() error
	logger   *slog.Logger
	stopSync func()

	// background bounds the rooms reloads started on login; Close cancels
	// it and waits for them.
	background context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	closed     bool
	reloads    sync.WaitGroup
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger}
	a.background, a.cancel = context.WithCancel(ctx)

	store, err := a.openTokenStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	sealed, err := session.NewSealedStore(store, cfg.SessionSecret)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("session store: %w", err)
	}

	a.holder = session.NewHolder(sealed, logger)
	if err := a.holder.Restore(ctx); err != nil {
		logger.Warn("starting without a session", "error", err)
	}

	client, err := gateway.NewClient(gateway.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Tokens:  a.holder,
		Logger:  logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	catalogCfg := application.CatalogConfig{
		Locale:   cfg.Locale,
		PageSize: cfg.PageSize,
		Logger:   logger,
	}
	if cfg.FixturesDir != "" {
		catalogCfg.Fixtures = fixture.Dir(cfg.FixturesDir)
	}
	if cfg.RoomsSource == config.RoomsFromGateway {
		catalogCfg.RoomAPI = client
	}
	a.catalogs = application.NewCatalogs(catalogCfg)
	if err := a.catalogs.ReloadAll(ctx); err != nil {
		logger.Warn("initial load incomplete", "error", err)
	}

	if catalogCfg.RoomAPI != nil {
		a.stopSync = a.holder.Subscribe(func(state session.State) {
			if !state.Authenticated {
				return
			}
			a.mu.Lock()
			defer a.mu.Unlock()
			if a.closed {
				return
			}
			a.reloads.Add(1)
			go func() {
				defer a.reloads.Done()
				reloadCtx, cancel := context.WithTimeout(a.background, cfg.APITimeout+time.Second)
				defer cancel()
				_ = a.catalogs.Rooms.Reload(reloadCtx)
			}()
		})
	}

	authService := application.NewAuthService(client, a.holder, logger)
	dashboardService := application.NewDashboardService(a.catalogs, time.Now, logger)

	a.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewCatalogHandler[application.User](a.catalogs.Users, logger),
		Rooms:        httptransport.NewCatalogHandler[application.Room](a.catalogs.Rooms, logger),
		Bookings:     httptransport.NewCatalogHandler[application.Booking](a.catalogs.Bookings, logger),
		Dashboard:    httptransport.NewDashboardHandler(dashboardService, a.holder, logger),
		Events:       httptransport.NewSessionEvents(a.holder, cfg.AllowedOrigins, logger),
		Session:      a.holder,
		LoginLimiter: httptransport.NewLoginLimiter(cfg.LoginRate),
		Logger:       logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.Recover(logger),
			httptransport.RequestLogger(logger),
			httptransport.CORS(cfg.AllowedOrigins),
		},
	})

	return a, nil
}

func (a *app) openTokenStore(ctx context.Context, cfg config.Config) (persistence.KeyValueStore, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return session.NewMemoryStore(), nil
	case config.TokenStoreRedis:
		store, err := redis.New(ctx, redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		storage, err := sqlite.Open(ctx, cfg.SQLiteDSN, a.logger)
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
		a.closers = append(a.closers, storage.Close)
		if err := storage.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate token store: %w", err)
		}
		return storage, nil
	}
}

// Close stops pending rooms reloads and releases the token store. It is safe
// to call more than once.
func (a *app) Close() {
	if a.stopSync != nil {
		a.stopSync()
		a.stopSync = nil
	}
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
	a.reloads.Wait()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("failed to close token store", "error", err)
		}
	}
	a.closers = nil
}
