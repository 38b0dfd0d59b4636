package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-admin/internal/fixture"
	"github.com/example/booking-admin/internal/form"
	"github.com/example/booking-admin/internal/gateway"
	"github.com/example/booking-admin/internal/listing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureFS(t *testing.T, users []User, rooms []Room, bookings []Booking) fstest.MapFS {
	t.Helper()
	encode := func(v any) *fstest.MapFile {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return &fstest.MapFile{Data: data}
	}
	return fstest.MapFS{
		fixture.UsersFile:    encode(users),
		fixture.RoomsFile:    encode(rooms),
		fixture.BookingsFile: encode(bookings),
	}
}

func sampleUsers(n int) []User {
	users := make([]User, n)
	for i := range users {
		users[i] = User{ID: i + 1, Name: "User " + string(rune('A'+i)), Email: "user" + string(rune('a'+i)) + "@example.com"}
	}
	return users
}

var sampleRooms = []Room{
	{ID: 1, Name: "Room A", Capacity: 2, Price: 100, Status: RoomStatusAvailable},
	{ID: 2, Name: "Room B", Capacity: 3, Price: 80, Status: RoomStatusBooked},
}

func loadedCatalogs(t *testing.T, cfg CatalogConfig) *Catalogs {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	catalogs := NewCatalogs(cfg)
	require.NoError(t, catalogs.ReloadAll(context.Background()))
	return catalogs
}

type stubRoomAPI struct {
	mu      sync.Mutex
	rooms   []Room
	listErr error
	created []Room
	// block, when set, holds CreateRoom until closed.
	block   chan struct{}
	entered chan struct{}
}

func (s *stubRoomAPI) ApprovedRooms(_ context.Context, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return s.listErr
	}
	*(out.(*[]Room)) = append([]Room(nil), s.rooms...)
	return nil
}

func (s *stubRoomAPI) CreateRoom(_ context.Context, payload, out any) error {
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room := payload.(Room)
	room.ID = 100 + len(s.created)
	s.created = append(s.created, room)
	s.rooms = append(s.rooms, room)
	*(out.(*Room)) = room
	return nil
}

func ptr(s string) *string { return &s }

func TestCatalog_ListAndSearch(t *testing.T) {
	ctx := context.Background()
	catalogs := loadedCatalogs(t, CatalogConfig{Fixtures: fixtureFS(t, sampleUsers(23), sampleRooms, nil)})

	view, err := catalogs.Users.List(ctx, ViewQuery{})
	require.NoError(t, err)
	assert.Equal(t, 23, view.TotalItems)
	assert.Equal(t, 3, view.TotalPages)
	assert.Len(t, view.Items, 10)

	view, err = catalogs.Users.List(ctx, ViewQuery{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, view.CurrentPage)
	assert.Len(t, view.Items, 3)

	view, err = catalogs.Users.List(ctx, ViewQuery{Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 3, view.CurrentPage, "out of range page is ignored")

	view, err = catalogs.Users.List(ctx, ViewQuery{Search: ptr("usERb@")})
	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalItems, "email is a search field")
	assert.Equal(t, 1, view.CurrentPage)

	roomView, err := catalogs.Rooms.List(ctx, ViewQuery{Search: ptr("room"), Sort: ptr("desc")})
	require.NoError(t, err)
	require.Len(t, roomView.Items, 2)
	assert.Equal(t, "Room B", roomView.Items[0].Name)

	_, err = catalogs.Users.List(ctx, ViewQuery{Sort: ptr("asc")})
	assert.ErrorIs(t, err, ErrSortUnsupported)

	_, err = catalogs.Rooms.List(ctx, ViewQuery{Sort: ptr("sideways")})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "sort")
}

func TestCatalog_BookingSearchByReference(t *testing.T) {
	bookings := []Booking{
		{ID: 1, RoomID: 1, UserID: 12, StartDate: "2025-03-01", EndDate: "2025-03-02", BookingDate: "2025-02-01"},
		{ID: 2, RoomID: 2, UserID: 4, StartDate: "2025-03-03", EndDate: "2025-03-04", BookingDate: "2025-02-02"},
	}
	catalogs := loadedCatalogs(t, CatalogConfig{Fixtures: fixtureFS(t, nil, nil, bookings)})

	view, err := catalogs.Bookings.List(context.Background(), ViewQuery{Search: ptr("12")})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].ID)
}

func TestCatalog_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	catalogs := loadedCatalogs(t, CatalogConfig{Fixtures: fixtureFS(t, sampleUsers(3), sampleRooms, nil)})
	users := catalogs.Users

	created, err := users.Create(ctx, form.Values{"name": "Sari", "email": "sari@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, 4, users.Len())

	_, err = users.Create(ctx, form.Values{"name": "No Email"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 4, users.Len(), "invalid input is not stored")

	updated, err := users.Update(ctx, 4, form.Values{"name": "Sari Dewi"})
	require.NoError(t, err)
	assert.Equal(t, User{ID: 4, Name: "Sari Dewi", Email: "sari@example.com"}, updated)

	prefill, err := users.FormValues(4)
	require.NoError(t, err)
	assert.Equal(t, form.Values{"name": "Sari Dewi", "email": "sari@example.com"}, prefill)

	_, err = users.Update(ctx, 99, form.Values{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = users.Delete(ctx, 4, listing.ConfirmFunc(func(context.Context, string) bool { return false }))
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, 4, users.Len())

	approve := listing.ConfirmFunc(func(context.Context, string) bool { return true })
	require.NoError(t, users.Delete(ctx, 4, approve))
	assert.ErrorIs(t, users.Delete(ctx, 4, approve), ErrNotFound)

	again, err := users.Create(ctx, form.Values{"name": "Budi", "email": "budi@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 5, again.ID, "identifiers are never reused")
}

func TestCatalog_RemoteRooms(t *testing.T) {
	ctx := context.Background()

	t.Run("create goes to the remote API and reloads", func(t *testing.T) {
		api := &stubRoomAPI{rooms: []Room{{ID: 1, Name: "Remote A", Status: "approved"}}}
		catalogs := loadedCatalogs(t, CatalogConfig{Fixtures: fixtureFS(t, nil, nil, nil), RoomAPI: api})
		require.Equal(t, 1, catalogs.Rooms.Len())

		created, err := catalogs.Rooms.Create(ctx, form.Values{"name": "Remote B", "capacity": "8"})
		require.NoError(t, err)
		assert.Equal(t, 100, created.ID)
		assert.Equal(t, 8, api.created[0].Capacity)
		assert.Equal(t, 2, catalogs.Rooms.Len(), "list reflects the remote collection")
	})

	t.Run("load failure leaves an empty list", func(t *testing.T) {
		api := &stubRoomAPI{listErr: &gateway.Error{Kind: gateway.KindTimeout}}
		catalogs := NewCatalogs(CatalogConfig{Fixtures: fixtureFS(t, nil, nil, nil), RoomAPI: api, Logger: quietLogger()})

		err := catalogs.Rooms.Reload(ctx)
		assert.True(t, gateway.IsKind(err, gateway.KindTimeout))
		assert.Zero(t, catalogs.Rooms.Len())
		assert.Error(t, catalogs.Rooms.LoadError())
	})

	t.Run("second submission while one is in flight is rejected", func(t *testing.T) {
		api := &stubRoomAPI{block: make(chan struct{}), entered: make(chan struct{})}
		catalogs := loadedCatalogs(t, CatalogConfig{Fixtures: fixtureFS(t, nil, nil, nil), RoomAPI: api})

		done := make(chan error, 1)
		go func() {
			_, err := catalogs.Rooms.Create(ctx, form.Values{"name": "Slow"})
			done <- err
		}()
		<-api.entered
		assert.True(t, catalogs.Rooms.Submitting())

		_, err := catalogs.Rooms.Create(ctx, form.Values{"name": "Impatient"})
		assert.True(t, errors.Is(err, ErrSubmissionInProgress), "got %v", err)

		close(api.block)
		require.NoError(t, <-done)
		assert.Len(t, api.created, 1)
		assert.False(t, catalogs.Rooms.Submitting())
	})
}
