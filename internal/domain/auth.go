package domain

import "time"

// IssuedToken is a signed bearer token handed to a client.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
