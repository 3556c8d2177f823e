package repository

import "errors"

// Sentinel kinds for event log errors.
var (
	ErrNotFound   = errors.New("user not found")
	ErrDuplicate  = errors.New("event already stored")
	ErrBadEventID = errors.New("empty event id")
)
