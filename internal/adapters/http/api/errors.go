package api

import (
	"errors"
	"fmt"
)

var (
	// ErrBadRequest marks a malformed or semantically invalid request body.
	ErrBadRequest = errors.New("bad request")
	// ErrBackpressure marks a rejected enqueue due to a full intake queue.
	ErrBackpressure = errors.New("intake queue full")
)

// NewKind annotates a sentinel kind with the operation that produced it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind annotates err with an operation and a sentinel kind so callers can
// match on the kind with errors.Is while keeping the original message.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}
