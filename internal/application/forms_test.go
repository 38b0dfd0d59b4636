package application

import (
	"errors"
	"testing"

	"github.com/example/booking-admin/internal/form"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return vErr.FieldErrors
}

func TestBindUser(t *testing.T) {
	t.Parallel()

	user, err := BindUser(form.Values{"name": " Sari ", "email": "sari@example.com"}, User{ID: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != (User{ID: 4, Name: "Sari", Email: "sari@example.com"}) {
		t.Fatalf("unexpected user: %+v", user)
	}

	fields := fieldErrors(t, func() error { _, err := BindUser(form.Values{}, User{}); return err }())
	if len(fields) != 2 || fields["name"] == "" || fields["email"] == "" {
		t.Fatalf("expected name and email errors, got %v", fields)
	}

	fields = fieldErrors(t, func() error {
		_, err := BindUser(form.Values{"name": "Sari", "email": "not-an-email"}, User{})
		return err
	}())
	if fields["email"] != "email is not a valid address" {
		t.Fatalf("expected email syntax error, got %v", fields)
	}
}

func TestBindRoom(t *testing.T) {
	t.Parallel()

	room, err := BindRoom(form.Values{"name": "Room C", "capacity": "4", "price": "120.5"}, Room{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.Status != RoomStatusAvailable || room.Capacity != 4 || room.Price != 120.5 {
		t.Fatalf("unexpected room: %+v", room)
	}

	cases := map[string]struct {
		values form.Values
		field  string
	}{
		"missing name":      {values: form.Values{"capacity": "2"}, field: "name"},
		"negative capacity": {values: form.Values{"name": "x", "capacity": "-1"}, field: "capacity"},
		"fractional seats":  {values: form.Values{"name": "x", "capacity": "1.5"}, field: "capacity"},
		"negative price":    {values: form.Values{"name": "x", "price": "-3"}, field: "price"},
		"price not numeric": {values: form.Values{"name": "x", "price": "mahal"}, field: "price"},
		"price NaN":         {values: form.Values{"name": "x", "price": "NaN"}, field: "price"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := BindRoom(tc.values, Room{})
			if fields := fieldErrors(t, err); fields[tc.field] == "" {
				t.Fatalf("expected %s error, got %v", tc.field, fields)
			}
		})
	}
}

func TestBindBooking(t *testing.T) {
	t.Parallel()

	valid := form.Values{
		"roomId":      "2",
		"userId":      "7",
		"startDate":   "2025-03-01",
		"endDate":     "2025-03-03",
		"bookingDate": "2025-02-20",
	}
	booking, err := BindBooking(valid, Booking{ID: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Booking{ID: 9, RoomID: 2, UserID: 7, StartDate: "2025-03-01", EndDate: "2025-03-03", BookingDate: "2025-02-20"}
	if booking != want {
		t.Fatalf("unexpected booking: %+v", booking)
	}

	if fields := fieldErrors(t, func() error { _, err := BindBooking(form.Values{}, Booking{}); return err }()); len(fields) != 5 {
		t.Fatalf("expected every field to be required, got %v", fields)
	}

	reversed := valid.Clone()
	reversed.Set("endDate", "2025-02-28")
	if fields := fieldErrors(t, func() error { _, err := BindBooking(reversed, Booking{}); return err }()); fields["endDate"] == "" {
		t.Fatalf("expected endDate ordering error, got %v", fields)
	}

	badDate := valid.Clone()
	badDate.Set("bookingDate", "20/02/2025")
	if fields := fieldErrors(t, func() error { _, err := BindBooking(badDate, Booking{}); return err }()); fields["bookingDate"] == "" {
		t.Fatalf("expected bookingDate format error, got %v", fields)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	room := Room{ID: 1, Name: "Room A", Description: "Luxury room", CategoryID: "1", UserID: "101", Image: "img1.jpg", Capacity: 2, Price: 100, Status: "Available"}
	bound, err := BindRoom(EncodeRoom(room), Room{ID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound != room {
		t.Fatalf("expected encoded room to bind back unchanged, got %+v", bound)
	}
}
