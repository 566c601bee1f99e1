package booking

import (
	"errors"
	"fmt"

	"chargebook/backend/services/booking-client/internal/clients"
)

var (
	// ErrSlotUnavailable: the pre-commit re-fetch no longer shows the slot as available.
	ErrSlotUnavailable = errors.New("slot no longer available")
	// ErrSlotTaken: the server refused the write because another client won the slot.
	ErrSlotTaken = errors.New("this slot was just taken")
	// ErrMalformedRequest: the server rejected the window or ids as invalid.
	ErrMalformedRequest = errors.New("reservation request rejected")
	// ErrCommitInFlight: a commit for the same selection is still running.
	ErrCommitInFlight = errors.New("reservation already in progress")
)

// ValidationError is a precondition failure detected before any network call.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsConflict reports whether err is a stale or late slot conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrSlotTaken)
}

// UserMessage maps a commit error to the text shown to the driver.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	var apiErr *clients.APIError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrSlotUnavailable):
		return "This slot is no longer available, please pick another one"
	case errors.Is(err, ErrSlotTaken):
		return "This slot was just taken by another driver, please pick another one"
	case errors.Is(err, ErrCommitInFlight):
		return "Your reservation is already being submitted"
	case errors.Is(err, ErrMalformedRequest) && errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, clients.ErrTokenExpired):
		return "Your session has expired, please sign in again"
	case errors.Is(err, clients.ErrServiceUnavailable):
		return "The booking service is temporarily unavailable, please try again shortly"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return fmt.Sprintf("Booking failed: %s", apiErr.Message)
	}
	return "Booking failed, please try again"
}
