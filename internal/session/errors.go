package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSuperseded       = errors.New("superseded by a later session action")
	ErrRefreshThrottled = errors.New("session refresh throttled")
)

// non-2xx reply from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}

	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// lets errors.Is(err, ErrUnauthorized) match 401 replies
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	return nil
}

// turns an error from a session action into text fit for a notification
func Message(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrInvalidInput) {
		return strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			return "Your session has expired. Please log in again."
		}

		if apiErr.Status < http.StatusInternalServerError && apiErr.Message != "" {
			return apiErr.Message
		}

		return "Something went wrong on our side. Please try again."
	}

	if errors.Is(err, ErrUnauthorized) {
		return "Your session has expired. Please log in again."
	}

	return "Network error. Please try again."
}

// wraps validator failures into a single readable ErrInvalidInput
func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())

	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "email":
		msg = field + " must be a valid email address"
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		msg = field + " is invalid"
	}

	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
