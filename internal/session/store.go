// Package session holds USSD dialogue state between gateway requests.
//
// The gateway resends the whole input history on every hit, so the only state
// that must survive between requests is what the dialogue cannot recompute:
// the selected role and the fields collected so far.
package session

import (
	"errors"
	"time"
)

var (
	ErrInvalidID = errors.New("session: id must not be empty")
	ErrNilState  = errors.New("session: session must not be nil")
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultVacuumEvery   = 30 * time.Second
	defaultRedisKeySpace = "lovtiti:ussd"
)

var now = time.Now
