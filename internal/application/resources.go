package application

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/example/booking-admin/internal/fixture"
	"github.com/example/booking-admin/internal/listing"
)

// Resource names, used for routing and logging.
const (
	UsersResource    = "users"
	RoomsResource    = "rooms"
	BookingsResource = "bookings"
)

// RoomAPI is the part of the remote gateway the rooms catalog needs.
type RoomAPI interface {
	ApprovedRooms(ctx context.Context, out any) error
	CreateRoom(ctx context.Context, payload, out any) error
}

// CatalogConfig selects where each collection comes from.
type CatalogConfig struct {
	// Fixtures holds users.json, bookings.json and rooms.json. Nil means the
	// embedded set.
	Fixtures fs.FS
	// RoomAPI backs the rooms catalog when set; otherwise rooms come from
	// the fixtures.
	RoomAPI  RoomAPI
	Locale   language.Tag
	PageSize int
	Logger   *slog.Logger
}

// Catalogs groups the three resource catalogs of the console.
type Catalogs struct {
	Users    *Catalog[User]
	Rooms    *Catalog[Room]
	Bookings *Catalog[Booking]
}

// NewCatalogs builds the user, room and booking catalogs.
func NewCatalogs(cfg CatalogConfig) *Catalogs {
	if cfg.Fixtures == nil {
		cfg.Fixtures = fixture.Embedded()
	}

	return &Catalogs{
		Users: NewCatalog(CatalogOptions[User]{
			Listing: listing.Options[User]{
				Name:         UsersResource,
				PageSize:     cfg.PageSize,
				SearchFields: userSearchFields,
				Locale:       cfg.Locale,
				Source:       fixture.Source[User]{FS: cfg.Fixtures, Path: fixture.UsersFile},
			},
			Bind:   BindUser,
			Encode: EncodeUser,
			Logger: cfg.Logger,
		}),
		Rooms: newRoomCatalog(cfg),
		Bookings: NewCatalog(CatalogOptions[Booking]{
			Listing: listing.Options[Booking]{
				Name:         BookingsResource,
				PageSize:     cfg.PageSize,
				SearchFields: bookingSearchFields,
				Locale:       cfg.Locale,
				Source:       fixture.Source[Booking]{FS: cfg.Fixtures, Path: fixture.BookingsFile},
			},
			Bind:   BindBooking,
			Encode: EncodeBooking,
			Logger: cfg.Logger,
		}),
	}
}

func newRoomCatalog(cfg CatalogConfig) *Catalog[Room] {
	opts := CatalogOptions[Room]{
		Listing: listing.Options[Room]{
			Name:         RoomsResource,
			PageSize:     cfg.PageSize,
			SearchFields: roomSearchFields,
			SortKey:      roomSortKey,
			Locale:       cfg.Locale,
			Source:       fixture.Source[Room]{FS: cfg.Fixtures, Path: fixture.RoomsFile},
		},
		Bind:   BindRoom,
		Encode: EncodeRoom,
		Logger: cfg.Logger,
	}

	if api := cfg.RoomAPI; api != nil {
		opts.Listing.Source = listing.SourceFunc[Room](func(ctx context.Context) ([]Room, error) {
			var rooms []Room
			if err := api.ApprovedRooms(ctx, &rooms); err != nil {
				return nil, err
			}
			return rooms, nil
		})
		opts.RemoteCreate = func(ctx context.Context, room Room) (Room, error) {
			var created Room
			if err := api.CreateRoom(ctx, room, &created); err != nil {
				return Room{}, err
			}
			return created, nil
		}
	}
	return NewCatalog(opts)
}

// ReloadAll loads every catalog. Failures are joined; a failed catalog is
// left empty while the others still load.
func (c *Catalogs) ReloadAll(ctx context.Context) error {
	return errors.Join(
		c.Users.Reload(ctx),
		c.Rooms.Reload(ctx),
		c.Bookings.Reload(ctx),
	)
}
