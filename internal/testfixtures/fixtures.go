// Package testfixtures builds deterministic users, rooms and bookings, and
// the catalogs and stores tests run them through.
package testfixtures

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing/fstest"
	"time"

	"github.com/example/booking-admin/internal/application"
	"github.com/example/booking-admin/internal/fixture"
)

var (
	userCounter    atomic.Int64
	roomCounter    atomic.Int64
	bookingCounter atomic.Int64
)

var referenceTime = time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)

// ReferenceMonth is the YYYY-MM prefix of ReferenceTime.
const ReferenceMonth = "2025-03"

// ReferenceTime is the instant fixtures and clocks default to.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

type UserOption func(*application.User)

// NewUser returns a user with a fresh id and matching name and email.
func NewUser(opts ...UserOption) application.User {
	idx := int(userCounter.Add(1))
	user := application.User{
		ID:    idx,
		Name:  fmt.Sprintf("User %03d", idx),
		Email: fmt.Sprintf("user%03d@example.com", idx),
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

func WithUserID(id int) UserOption {
	return func(u *application.User) { u.ID = id }
}

func WithUserName(name string) UserOption {
	return func(u *application.User) { u.Name = name }
}

func WithUserEmail(email string) UserOption {
	return func(u *application.User) { u.Email = email }
}

// ----------------------------- Room fixtures -----------------------------

type RoomOption func(*application.Room)

// NewRoom returns an available room for four at 100 per night.
func NewRoom(opts ...RoomOption) application.Room {
	idx := int(roomCounter.Add(1))
	room := application.Room{
		ID:          idx,
		Name:        fmt.Sprintf("Room %03d", idx),
		Description: "Meeting room",
		Capacity:    4,
		Price:       100,
		Status:      application.RoomStatusAvailable,
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

func WithRoomID(id int) RoomOption {
	return func(r *application.Room) { r.ID = id }
}

func WithRoomName(name string) RoomOption {
	return func(r *application.Room) { r.Name = name }
}

func WithRoomPrice(price float64) RoomOption {
	return func(r *application.Room) { r.Price = price }
}

func WithRoomCapacity(capacity int) RoomOption {
	return func(r *application.Room) { r.Capacity = capacity }
}

// WithRoomBooked marks the room as taken.
func WithRoomBooked() RoomOption {
	return func(r *application.Room) { r.Status = application.RoomStatusBooked }
}

// --------------------------- Booking fixtures ----------------------------

type BookingOption func(*application.Booking)

// NewBooking returns a one-night booking of room for user starting on the
// first day of ReferenceMonth.
func NewBooking(room application.Room, user application.User, opts ...BookingOption) application.Booking {
	idx := int(bookingCounter.Add(1))
	start := time.Date(referenceTime.Year(), referenceTime.Month(), 1, 0, 0, 0, 0, time.UTC)
	booking := application.Booking{
		ID:          idx,
		RoomID:      room.ID,
		UserID:      user.ID,
		StartDate:   start.Format(time.DateOnly),
		EndDate:     start.AddDate(0, 0, 1).Format(time.DateOnly),
		BookingDate: start.AddDate(0, 0, -7).Format(time.DateOnly),
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

func WithBookingID(id int) BookingOption {
	return func(b *application.Booking) { b.ID = id }
}

// WithBookingDates sets the stay, both dates in YYYY-MM-DD form.
func WithBookingDates(start, end string) BookingOption {
	return func(b *application.Booking) {
		b.StartDate = start
		b.EndDate = end
	}
}

// ----------------------------- Fixture files -----------------------------

// CatalogFS lays the records out the way the embedded fixture set is laid
// out, ready for application.CatalogConfig.Fixtures.
func CatalogFS(users []application.User, rooms []application.Room, bookings []application.Booking) fstest.MapFS {
	return fstest.MapFS{
		fixture.UsersFile:    jsonFile(nonNil(users)),
		fixture.RoomsFile:    jsonFile(nonNil(rooms)),
		fixture.BookingsFile: jsonFile(nonNil(bookings)),
	}
}

func jsonFile(v any) *fstest.MapFile {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: encode fixture: %v", err))
	}
	return &fstest.MapFile{Data: data}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
