package omdb

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the catalog reports no match (Response "False").
var ErrNotFound = errors.New("omdb: movies not found")

// User-visible messages for each error kind.
const (
	MessageTransport = "Something went wrong with fetching movies"
	MessageNotFound  = "Movies not found"
	MessageParse     = "Received an unreadable response from the movie catalog"
)

// TransportError reports a request that failed before a usable payload arrived,
// either because of the network or because of a non-success status.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("omdb: transport: %v", e.Err)
	}
	return fmt.Sprintf("omdb: upstream returned %d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a payload that could not be decoded into a typed record.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("omdb: parse %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("omdb: parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsCanceled reports whether err stems from a canceled request.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UserMessage maps err to the single line shown to the user. Canceled
// requests map to the empty string.
func UserMessage(err error) string {
	var parseErr *ParseError
	switch {
	case err == nil, IsCanceled(err):
		return ""
	case errors.Is(err, ErrNotFound):
		return MessageNotFound
	case errors.As(err, &parseErr):
		return MessageParse
	default:
		return MessageTransport
	}
}
