package sentinel

import "errors"

// Stores return these (optionally wrapped with %w) to describe facts about
// records. Services translate them into domain errors; stores never build
// domain errors themselves.
//
//   - ErrNotFound: no row for the key or id
//   - ErrAlreadyUsed: a unique key (email, username) is taken
//   - ErrInvalidState: a store-level precondition failed inside Execute
//   - ErrUnavailable: backing service (cache, broker) not reachable
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
