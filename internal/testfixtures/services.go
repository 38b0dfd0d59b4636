package testfixtures

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/example/booking-admin/internal/application"
	"github.com/example/booking-admin/internal/persistence"
	"github.com/example/booking-admin/internal/session"
)

// ServiceFactory builds application services that share one clock and one
// logger.
type ServiceFactory struct {
	Clock  *Clock
	Logger *slog.Logger
}

type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory uses a clock at ReferenceTime and a logger that discards
// everything unless overridden.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(ReferenceTime())
	}
	if factory.Logger == nil {
		factory.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return factory
}

func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// CatalogDeps selects the fixture files and paging for NewCatalogs.
type CatalogDeps struct {
	Fixtures fs.FS
	RoomAPI  application.RoomAPI
	PageSize int
}

// NewCatalogs builds the three catalogs and loads them, failing the test when
// any load fails.
func (f *ServiceFactory) NewCatalogs(tb testing.TB, deps CatalogDeps) *application.Catalogs {
	tb.Helper()
	catalogs := application.NewCatalogs(application.CatalogConfig{
		Fixtures: deps.Fixtures,
		RoomAPI:  deps.RoomAPI,
		PageSize: deps.PageSize,
		Logger:   f.Logger,
	})
	if err := catalogs.ReloadAll(context.Background()); err != nil {
		tb.Fatalf("failed to load catalogs: %v", err)
	}
	return catalogs
}

// NewHolder returns a logged out session holder over store. A nil store
// selects an in-memory one.
func (f *ServiceFactory) NewHolder(store persistence.KeyValueStore) *session.Holder {
	if store == nil {
		store = session.NewMemoryStore()
	}
	return session.NewHolder(store, f.Logger)
}

func (f *ServiceFactory) NewAuthService(api application.AuthAPI, holder application.SessionHolder) *application.AuthService {
	return application.NewAuthService(api, holder, f.Logger)
}

// NewDashboardService reads the time from the factory clock.
func (f *ServiceFactory) NewDashboardService(catalogs *application.Catalogs) *application.DashboardService {
	return application.NewDashboardService(catalogs, f.Clock.NowFunc(), f.Logger)
}
