package geo

import (
	"errors"
	"fmt"
)

// Error kinds for a single query. None of them is retried.
var (
	ErrEmptyInput     = errors.New("empty address")
	ErrInvalidFormat  = errors.New("invalid IPv4 address format")
	ErrInvalidAddress = errors.New("address is reserved or non-routable")
	ErrTransport      = errors.New("provider request failed")
)

// User-facing messages, one per error kind
const (
	MsgEmptyInput     = "Please enter an IP address"
	MsgInvalidFormat  = "Please enter a valid IP address (e.g. 8.8.8.8)"
	MsgInvalidAddress = "Lookup failed: please check that the IP address is correct"
	MsgTransport      = "Lookup failed: network request failed or IP address invalid"
	MsgUnexpected     = "Lookup failed: unexpected error"
)

// TransportError reports a failed provider call: a network failure,
// a non-success status, or a body that could not be decoded
type TransportError struct {
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("provider request failed: %v", e.Err)
	}
	return ErrTransport.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransport) match any TransportError
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// UserMessage returns the human-readable message for a lookup error
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return MsgEmptyInput
	case errors.Is(err, ErrInvalidFormat):
		return MsgInvalidFormat
	case errors.Is(err, ErrInvalidAddress):
		return MsgInvalidAddress
	case errors.Is(err, ErrTransport):
		return MsgTransport
	}
	return MsgUnexpected
}

// Kind returns a short label for a lookup error, used in logs and metrics
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrTransport):
		return "transport"
	}
	return "unexpected"
}
