package auth

import "inkfeed/app/domain"

// Identity is the caller behind one request. The zero value is anonymous.
type Identity struct {
	UserID string
	Email  string

	// err remembers why a presented credential was refused.
	err error
}

// Anonymous is the identity of a request that carried no credential.
var Anonymous = Identity{}

// Authenticated builds the identity of a verified caller.
func Authenticated(userID, email string) Identity {
	return Identity{UserID: userID, Email: email}
}

// Rejected is an anonymous identity that remembers a refused credential.
func Rejected(err error) Identity {
	return Identity{err: err}
}

// IsAuthenticated reports whether the caller proved who they are.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != "" && i.err == nil
}

// Require returns nil for an authenticated caller and an Unauthenticated error
// otherwise. A refused credential is reported as such.
func (i Identity) Require() error {
	if i.IsAuthenticated() {
		return nil
	}
	if i.err != nil {
		return domain.As(i.err)
	}
	return domain.Unauthenticated("Not authenticated.")
}
