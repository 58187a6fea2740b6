package domain

import "time"

// IssuedToken is a signed bearer credential handed to a caller.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}
