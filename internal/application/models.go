package application

import "strconv"

// Room status values used by the dashboard metrics and the room form.
const (
	RoomStatusAvailable = "Available"
	RoomStatusBooked    = "Booked"
)

// User is a registered customer of the booking service.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) RecordID() int { return u.ID }

func (u User) WithID(id int) User {
	u.ID = id
	return u
}

// Room is a bookable room. CategoryID and UserID are opaque references kept
// in the remote API's string form.
type Room struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CategoryID  string  `json:"categoryId"`
	UserID      string  `json:"userId"`
	Image       string  `json:"image"`
	Capacity    int     `json:"capacity"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
}

func (r Room) RecordID() int { return r.ID }

func (r Room) WithID(id int) Room {
	r.ID = id
	return r
}

// Booking reserves a room for a user. Dates use the YYYY-MM-DD layout and the
// room and user references are not checked against the other collections.
type Booking struct {
	ID          int    `json:"id"`
	RoomID      int    `json:"roomId"`
	UserID      int    `json:"userId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	BookingDate string `json:"bookingDate"`
}

func (b Booking) RecordID() int { return b.ID }

func (b Booking) WithID(id int) Booking {
	b.ID = id
	return b
}

func userSearchFields(u User) []string { return []string{u.Name, u.Email} }

func roomSearchFields(r Room) []string { return []string{r.Name} }

func roomSortKey(r Room) string { return r.Name }

func bookingSearchFields(b Booking) []string {
	return []string{strconv.Itoa(b.RoomID), strconv.Itoa(b.UserID)}
}

// ViewQuery carries the list controls submitted with a list request.
type ViewQuery struct {
	Search *string
	Page   int
	Sort   *string
}

// Link is one navigation entry.
type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// SeriesPoint is one month of a dashboard chart.
type SeriesPoint struct {
	Month string `json:"month"`
	Value int    `json:"value"`
}

// Card is a static summary tile on the dashboard.
type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
}

// Metrics is the dashboard payload.
type Metrics struct {
	Users               int           `json:"users"`
	Rooms               int           `json:"rooms"`
	Bookings            int           `json:"bookings"`
	AvailableRooms      int           `json:"availableRooms"`
	BookingsThisMonth   int           `json:"bookingsThisMonth"`
	EstimatedRevenue    float64       `json:"estimatedRevenue"`
	MonthlyUsers        []SeriesPoint `json:"monthlyUsers"`
	MonthlyTransactions []SeriesPoint `json:"monthlyTransactions"`
	Cards               []Card        `json:"cards"`
	// Failures lists collections whose last load failed.
	Failures map[string]string `json:"failures,omitempty"`
}
