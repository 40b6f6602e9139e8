// Package session holds the logged-in identity.
package session

import "github.com/verte-zerg/challenger/internal/model"

// Session is the identity every request is scoped by.
// It is written only by login and logout, both on the UI loop.
type Session struct {
	UserID   int64
	Nickname string
}

// LoggedIn reports whether a user has been established.
func (s *Session) LoggedIn() bool {
	return s != nil && s.UserID != 0 && s.Nickname != ""
}

// Set stores the identity returned by login.
func (s *Session) Set(user model.User) {
	s.UserID = user.ID
	s.Nickname = user.Username
}

// Clear forgets the identity.
func (s *Session) Clear() {
	s.UserID = 0
	s.Nickname = ""
}
