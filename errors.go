package skydesk

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput = errors.New("skydesk: invalid input")
	ErrNotStarted   = errors.New("skydesk: desk not started")

	// Points ledger errors
	ErrInvalidAmount   = errors.New("skydesk: amount must be positive")
	ErrAccountNotFound = errors.New("skydesk: account not found")

	// Reservation errors
	ErrFlightNotFound          = errors.New("skydesk: flight not found")
	ErrCodeGenerationExhausted = errors.New("skydesk: could not generate a unique booking code")
	ErrDuplicateCode           = errors.New("skydesk: booking code already exists")
	ErrReservationNotFound     = errors.New("skydesk: reservation not found")
	ErrFlightFull              = errors.New("skydesk: flight is at capacity")

	// Support ticket errors
	ErrTicketNotFound = errors.New("skydesk: ticket not found")
	ErrTicketClosed   = errors.New("skydesk: ticket already closed")
	ErrTicketExists   = errors.New("skydesk: ticket already exists")

	// Announcement errors
	ErrAnnouncementNotFound = errors.New("skydesk: announcement not found")
	ErrAnnouncementExists   = errors.New("skydesk: announcement already exists")

	// Store errors
	ErrStorageUnavailable = errors.New("skydesk: storage unavailable")
	ErrMigrationFailed    = errors.New("skydesk: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("skydesk: validation failed for %s: %s", e.Field, e.Message)
}

// Is reports ValidationError as a kind of ErrInvalidInput.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "skydesk: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("skydesk: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrorOrNil returns the multi-error when it holds anything, nil otherwise.
func (e MultiError) ErrorOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrFlightNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrAnnouncementNotFound)
}

// IsValidation returns true if the error was caused by bad caller input.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidAmount)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
// A booking code collision is retryable: a fresh attempt draws a new code.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrCodeGenerationExhausted) ||
		errors.Is(err, ErrStorageUnavailable)
}

// storageErr classifies a store error for callers. Domain sentinels pass
// through; anything else is reported as ErrStorageUnavailable.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) ||
		errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrTicketExists) ||
		errors.Is(err, ErrAnnouncementExists) ||
		errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
