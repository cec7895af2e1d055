package model

import (
	"bytes"
	"errors"
	"strconv"
)

// ErrInvalidLimit is returned when limit is neither false nor a non-negative integer.
var ErrInvalidLimit = errors.New("limit must be false or a non-negative integer")

// Limit is the deletion cap of a clear request. The zero value is unbounded.
//
// On the wire it is either the literal false (unbounded) or a non-negative
// integer.
type Limit struct {
	n       int
	bounded bool
}

// Unbounded returns a Limit without a cap.
func Unbounded() Limit { return Limit{} }

// Max returns a Limit capped at n deletions.
func Max(n int) Limit { return Limit{n: n, bounded: true} }

// Value returns the cap and whether one is set.
func (l Limit) Value() (int, bool) { return l.n, l.bounded }

// Reached reports whether count deletions exhaust the limit.
func (l Limit) Reached(count int) bool { return l.bounded && count >= l.n }

// String returns "all" or the numeric cap.
func (l Limit) String() string {
	if !l.bounded {
		return "all"
	}
	return strconv.Itoa(l.n)
}

// MarshalJSON implements json.Marshaler.
func (l Limit) MarshalJSON() ([]byte, error) {
	if !l.bounded {
		return []byte("false"), nil
	}
	return []byte(strconv.Itoa(l.n)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Limit) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("false")) || bytes.Equal(data, []byte("null")) {
		*l = Unbounded()
		return nil
	}

	n, err := strconv.Atoi(string(data))
	if err != nil || n < 0 {
		return ErrInvalidLimit
	}
	*l = Max(n)
	return nil
}

// ClearRequest is the body of POST /clear-messages
type ClearRequest struct {
	Token            string `json:"token" validate:"required"`
	ID               string `json:"id"    validate:"required"`
	Limit            Limit  `json:"limit"`
	DirectionTopDown *bool  `json:"directionTopDown,omitempty"`
	OnlyUserMessages *bool  `json:"onlyUserMessages,omitempty"`
}

// TopDown returns directionTopDown, defaulting to true.
func (r ClearRequest) TopDown() bool {
	return r.DirectionTopDown == nil || *r.DirectionTopDown
}

// OnlyOwn returns onlyUserMessages, defaulting to true.
func (r ClearRequest) OnlyOwn() bool {
	return r.OnlyUserMessages == nil || *r.OnlyUserMessages
}

// ClearResponse is the success body of POST /clear-messages
type ClearResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned on every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
