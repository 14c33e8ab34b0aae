package gate

import (
	"context"
	"time"
)

// Session is either Authenticated(UserID) or Anonymous (empty UserID).
type Session struct {
	UserID string
}

var Anonymous = Session{}

func Authenticated(userID string) Session {
	return Session{UserID: userID}
}

func (session Session) IsAuthenticated() bool {
	return session.UserID != ""
}

// CookieJar holds the raw inbound request cookies by name.
type CookieJar map[string]string

func (jar CookieJar) Get(name string) (string, bool) {
	value, ok := jar[name]
	return value, ok
}

// CookieOp is one cookie mutation to mirror onto the outgoing response.
type CookieOp struct {
	Name     string
	Value    string
	Path     string
	Expires  time.Time
	HTTPOnly bool
	Secure   bool
	SameSite string
	Delete   bool
}

func DeleteCookie(name string, secure bool) CookieOp {
	return CookieOp{
		Name:     name,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
		Delete:   true,
	}
}

// SessionResolver reads the session cookies, possibly rotating them. The
// returned ops must be replayed on the response even when it is a redirect.
type SessionResolver interface {
	Resolve(ctx context.Context, cookies CookieJar) (Session, []CookieOp, error)
}
