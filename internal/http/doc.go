// Package http exposes the booking admin console as a JSON API.
//
// The router exposes the following endpoints:
//   - GET /: landing payload with the application name, session state and
//     navigation links. GET /navigation returns the links alone.
//   - POST /login: body {"email","password"}. Exchanges the credentials with
//     the remote API and stores the returned token. Rate limited per client.
//   - POST /logout: clears the stored token. Returns 204 No Content.
//   - POST /register: body {"name","email","password","password_confirmation"}.
//     Creates the remote account and signs in with it.
//   - GET /session: current session state. GET /session/events upgrades to a
//     WebSocket that streams every session state change.
//   - GET /users, POST /users, GET /users/:id, PUT /users/:id, DELETE /users/:id
//     and the same set for /rooms and /bookings. List queries accept search,
//     page and sort (asc, desc or none); reload=true refetches the source first.
//     DELETE requires confirm=true or the header X-Confirm: yes.
//   - GET /dashboard: live counts and the monthly chart series.
//
// Everything except /, /navigation, /login, /logout, /register, /session and
// /session/events answers 401 until a session is held. Request bodies are
// JSON objects of scalar fields or urlencoded forms.
package http
