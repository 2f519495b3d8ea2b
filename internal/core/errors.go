package core

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrMissingField     = errors.New("missing required field")
	ErrTextTooLong      = errors.New("text too long")
	ErrGoalNotFound     = errors.New("goal not found")
	ErrGoalLocked       = errors.New("goal locked")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrPriorityNotFound = errors.New("priority not found")
)

// MaxTextLength bounds free text fields such as notes and titles.
const MaxTextLength = 200

// ValidationError is a rejected draft. Message is what the user sees in the
// error notification; Err names the underlying reason.
type ValidationError struct {
	Message string
	Err     error
}

func NewValidationError(message string, err error) error {
	return &ValidationError{Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap makes errors.Is match both ErrValidation and the specific reason.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// UserMessage extracts the message to show for err. Non-validation errors
// get a generic text.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	switch {
	case errors.Is(err, ErrGoalLocked):
		return "This goal is locked. Unlock it to add savings"
	case errors.Is(err, ErrGoalNotFound), errors.Is(err, ErrReminderNotFound), errors.Is(err, ErrPriorityNotFound):
		return "That item no longer exists"
	}
	return "Something went wrong, please try again"
}
