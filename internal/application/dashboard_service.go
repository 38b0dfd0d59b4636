package application

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

var chartMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul"}

var (
	monthlyUsers        = []int{50, 75, 100, 125, 150, 175, 200}
	monthlyTransactions = []int{30, 45, 80, 90, 120, 140, 160}
)

var staticCards = []Card{
	{Title: "Total Revenue", Value: "$3249", Icon: "wallet"},
	{Title: "Total Users", Value: "249", Icon: "users"},
	{Title: "New Users", Value: "2", Icon: "user-plus"},
	{Title: "Server Uptime", Value: "152 days", Icon: "server"},
	{Title: "To Do List", Value: "7 tasks", Icon: "tasks"},
	{Title: "Issues", Value: "3", Icon: "inbox"},
}

// DashboardService summarizes the loaded catalogs.
type DashboardService struct {
	catalogs *Catalogs
	now      func() time.Time
	logger   *slog.Logger
}

// NewDashboardService constructs a DashboardService. A nil clock uses time.Now.
func NewDashboardService(catalogs *Catalogs, now func() time.Time, logger *slog.Logger) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{catalogs: catalogs, now: now, logger: defaultLogger(logger)}
}

// Metrics computes the live counts and attaches the fixed chart series.
func (s *DashboardService) Metrics(ctx context.Context) Metrics {
	logger := serviceLogger(ctx, s.logger, "DashboardService", "Metrics")

	users := s.catalogs.Users.Items()
	rooms := s.catalogs.Rooms.Items()
	bookings := s.catalogs.Bookings.Items()

	metrics := Metrics{
		Users:               len(users),
		Rooms:               len(rooms),
		Bookings:            len(bookings),
		MonthlyUsers:        series(monthlyUsers),
		MonthlyTransactions: series(monthlyTransactions),
		Cards:               append([]Card(nil), staticCards...),
	}

	priceByRoom := make(map[int]float64, len(rooms))
	for _, room := range rooms {
		priceByRoom[room.ID] = room.Price
		if strings.EqualFold(room.Status, RoomStatusAvailable) {
			metrics.AvailableRooms++
		}
	}

	month := s.now().Format("2006-01")
	for _, booking := range bookings {
		if strings.HasPrefix(booking.StartDate, month) {
			metrics.BookingsThisMonth++
		}
		metrics.EstimatedRevenue += priceByRoom[booking.RoomID]
	}

	for name, err := range map[string]error{
		UsersResource:    s.catalogs.Users.LoadError(),
		RoomsResource:    s.catalogs.Rooms.LoadError(),
		BookingsResource: s.catalogs.Bookings.LoadError(),
	} {
		if err == nil {
			continue
		}
		if metrics.Failures == nil {
			metrics.Failures = make(map[string]string)
		}
		metrics.Failures[name] = err.Error()
	}

	logger.Debug("metrics computed", "users", metrics.Users, "rooms", metrics.Rooms, "bookings", metrics.Bookings)
	return metrics
}

func series(values []int) []SeriesPoint {
	points := make([]SeriesPoint, len(values))
	for i, v := range values {
		points[i] = SeriesPoint{Month: chartMonths[i], Value: v}
	}
	return points
}
