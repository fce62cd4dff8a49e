package models

import "errors"

var (
	// ErrNotInitialized is returned by store operations called before Open.
	ErrNotInitialized = errors.New("store not initialized")
	ErrClosed         = errors.New("store is closed")
	// ErrInvalidID rejects imported records whose id is zero or negative.
	ErrInvalidID = errors.New("record id must be positive")
)
