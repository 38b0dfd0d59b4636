package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-admin/internal/gateway"
)

func TestDashboardService_Metrics(t *testing.T) {
	bookings := []Booking{
		{ID: 1, RoomID: 1, UserID: 1, StartDate: "2025-03-01", EndDate: "2025-03-02", BookingDate: "2025-02-10"},
		{ID: 2, RoomID: 2, UserID: 2, StartDate: "2025-03-05", EndDate: "2025-03-06", BookingDate: "2025-02-11"},
		{ID: 3, RoomID: 1, UserID: 3, StartDate: "2025-04-01", EndDate: "2025-04-02", BookingDate: "2025-03-01"},
		{ID: 4, RoomID: 9, UserID: 3, StartDate: "2025-03-09", EndDate: "2025-03-10", BookingDate: "2025-03-01"},
	}
	catalogs := loadedCatalogs(t, CatalogConfig{Fixtures: fixtureFS(t, sampleUsers(5), sampleRooms, bookings)})
	clock := func() time.Time { return time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC) }

	metrics := NewDashboardService(catalogs, clock, quietLogger()).Metrics(context.Background())

	assert.Equal(t, 5, metrics.Users)
	assert.Equal(t, 2, metrics.Rooms)
	assert.Equal(t, 4, metrics.Bookings)
	assert.Equal(t, 1, metrics.AvailableRooms)
	assert.Equal(t, 3, metrics.BookingsThisMonth)
	assert.InDelta(t, 280.0, metrics.EstimatedRevenue, 0.001, "unknown rooms contribute nothing")
	require.Len(t, metrics.MonthlyUsers, 7)
	assert.Equal(t, SeriesPoint{Month: "Jul", Value: 200}, metrics.MonthlyUsers[6])
	assert.Equal(t, SeriesPoint{Month: "Jan", Value: 30}, metrics.MonthlyTransactions[0])
	assert.Len(t, metrics.Cards, 6)
	assert.Empty(t, metrics.Failures)
}

func TestDashboardService_ReportsFailedLoads(t *testing.T) {
	api := &stubRoomAPI{listErr: &gateway.Error{Kind: gateway.KindUnauthenticated}}
	catalogs := NewCatalogs(CatalogConfig{Fixtures: fixtureFS(t, sampleUsers(2), nil, nil), RoomAPI: api, Logger: quietLogger()})
	_ = catalogs.ReloadAll(context.Background())

	metrics := NewDashboardService(catalogs, nil, quietLogger()).Metrics(context.Background())
	assert.Equal(t, 2, metrics.Users)
	assert.Zero(t, metrics.Rooms)
	assert.Contains(t, metrics.Failures, RoomsResource)
}
