package application

// Navigation returns the links shown for the given session state. Home is
// always present; the resource pages and Logout need a session.
func Navigation(authenticated bool) []Link {
	links := []Link{{Label: "Home", Path: "/"}}
	if authenticated {
		return append(links,
			Link{Label: "Users", Path: "/users"},
			Link{Label: "Room Management", Path: "/rooms"},
			Link{Label: "Bookings", Path: "/bookings"},
			Link{Label: "Logout", Path: "/logout"},
		)
	}
	return append(links,
		Link{Label: "Login", Path: "/login"},
		Link{Label: "Register", Path: "/register"},
	)
}
