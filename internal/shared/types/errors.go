package types

import (
	"errors"
	"fmt"
)

// Backend envelope codes.
const (
	CodeSuccess      = 200
	CodeTokenExpired = 401001
	CodeTokenInvalid = 401002
	CodeNoUser       = 401003
)

// ErrCancelledByUser marks a declined confirmation. Dispatch treats it as a
// silent abort.
var ErrCancelledByUser = errors.New("cancelled by user")

// TransportError is a network or backend failure carrying a message fit for
// display.
type TransportError struct {
	Op      string
	Code    int
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Unauthorized reports whether the backend rejected the credentials.
func (e *TransportError) Unauthorized() bool {
	return e.Code == CodeTokenExpired || e.Code == CodeTokenInvalid || e.Status == 401
}

// TimeoutError is a client-enforced deadline with a per-operation message.
type TimeoutError struct {
	Op      string
	Message string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// ValidationError is input rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CatalogueUnavailable wraps a failed operation catalogue fetch.
type CatalogueUnavailable struct {
	Err error
}

func (e *CatalogueUnavailable) Error() string {
	return fmt.Sprintf("operation catalogue unavailable: %v", e.Err)
}

func (e *CatalogueUnavailable) Unwrap() error { return e.Err }

// UserMessage extracts the text to show for err. Messages of the taxonomy
// types are returned bare.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var te *TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	var to *TimeoutError
	if errors.As(err, &to) {
		return to.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

// IsValidation reports whether err is, or aggregates, validation errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
