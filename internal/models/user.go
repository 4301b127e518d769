// Package models contains data structures for the application's domain models.
package models

// User represents a forum account as the API serves it.
//
// IsAdmin is an integer 0/1 flag rather than a bool because that is the wire
// format the backend uses; 1 grants blanket modify rights and topic
// management.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Password string `gorm:"not null" json:"password"`
	IsAdmin  int    `gorm:"not null;default:0" json:"isAdmin"`
}

// Credentials is the login/create-account request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the client-held authentication state.
//
// Invariant: IsAuthenticated implies User != nil, and the held User never
// carries a password (it is scrubbed on login before the session is stored).
type Session struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"is_authenticated"`
}

// LoggedOut returns the empty, unauthenticated session.
func LoggedOut() Session {
	return Session{}
}
