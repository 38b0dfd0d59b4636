package application

import (
	"math"
	"net/mail"
	"strconv"
	"time"

	"github.com/example/booking-admin/internal/form"
)

// BindUser validates user form values on top of base.
func BindUser(values form.Values, base User) (User, error) {
	vErr := &ValidationError{}

	base.Name = values.Get("name")
	if base.Name == "" {
		vErr.add("name", "name is required")
	}

	base.Email = values.Get("email")
	switch {
	case base.Email == "":
		vErr.add("email", "email is required")
	case !validEmail(base.Email):
		vErr.add("email", "email is not a valid address")
	}

	if err := vErr.errOrNil(); err != nil {
		return User{}, err
	}
	return base, nil
}

// EncodeUser renders u as form values.
func EncodeUser(u User) form.Values {
	return form.Values{"name": u.Name, "email": u.Email}
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}

// BindRoom validates room form values on top of base. Status defaults to
// Available; blank capacity and price mean zero.
func BindRoom(values form.Values, base Room) (Room, error) {
	vErr := &ValidationError{}

	base.Name = values.Get("name")
	if base.Name == "" {
		vErr.add("name", "name is required")
	}
	base.Description = values.Get("description")
	base.CategoryID = values.Get("categoryId")
	base.UserID = values.Get("userId")
	base.Image = values.Get("image")
	base.Status = values.Get("status")
	if base.Status == "" {
		base.Status = RoomStatusAvailable
	}

	base.Capacity = 0
	if raw := values.Get("capacity"); raw != "" {
		capacity, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			vErr.add("capacity", "capacity must be a whole number")
		case capacity < 0:
			vErr.add("capacity", "capacity must not be negative")
		default:
			base.Capacity = capacity
		}
	}

	base.Price = 0
	if raw := values.Get("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil, math.IsNaN(price), math.IsInf(price, 0):
			vErr.add("price", "price must be a number")
		case price < 0:
			vErr.add("price", "price must not be negative")
		default:
			base.Price = price
		}
	}

	if err := vErr.errOrNil(); err != nil {
		return Room{}, err
	}
	return base, nil
}

// EncodeRoom renders r as form values.
func EncodeRoom(r Room) form.Values {
	return form.Values{
		"name":        r.Name,
		"description": r.Description,
		"categoryId":  r.CategoryID,
		"userId":      r.UserID,
		"image":       r.Image,
		"capacity":    strconv.Itoa(r.Capacity),
		"price":       strconv.FormatFloat(r.Price, 'f', -1, 64),
		"status":      r.Status,
	}
}

// BindBooking validates booking form values on top of base. Every field is
// required; dates use the YYYY-MM-DD layout and the end may not precede the
// start.
func BindBooking(values form.Values, base Booking) (Booking, error) {
	vErr := &ValidationError{}

	base.RoomID = requiredID(vErr, values, "roomId")
	base.UserID = requiredID(vErr, values, "userId")

	start, startOK := requiredDate(vErr, values, "startDate")
	end, endOK := requiredDate(vErr, values, "endDate")
	_, _ = requiredDate(vErr, values, "bookingDate")
	if startOK && endOK && end.Before(start) {
		vErr.add("endDate", "endDate must not be before startDate")
	}

	if err := vErr.errOrNil(); err != nil {
		return Booking{}, err
	}
	base.StartDate = values.Get("startDate")
	base.EndDate = values.Get("endDate")
	base.BookingDate = values.Get("bookingDate")
	return base, nil
}

// EncodeBooking renders b as form values.
func EncodeBooking(b Booking) form.Values {
	values := form.Values{
		"startDate":   b.StartDate,
		"endDate":     b.EndDate,
		"bookingDate": b.BookingDate,
	}
	if b.RoomID != 0 {
		values.Set("roomId", strconv.Itoa(b.RoomID))
	}
	if b.UserID != 0 {
		values.Set("userId", strconv.Itoa(b.UserID))
	}
	return values
}

func requiredID(vErr *ValidationError, values form.Values, field string) int {
	raw := values.Get(field)
	if raw == "" {
		vErr.add(field, field+" is required")
		return 0
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		vErr.add(field, field+" must be a positive whole number")
		return 0
	}
	return id
}

func requiredDate(vErr *ValidationError, values form.Values, field string) (time.Time, bool) {
	raw := values.Get(field)
	if raw == "" {
		vErr.add(field, field+" is required")
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		vErr.add(field, field+" must use the YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

// mergeValues overlays submitted on top of the encoded base record so partial
// updates keep the fields they do not mention.
func mergeValues(base, submitted form.Values) form.Values {
	merged := base.Clone()
	for key, value := range submitted {
		merged[key] = value
	}
	return merged
}
