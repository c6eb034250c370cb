package warden

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorCategory says whether a failed call to an LLM provider or a tool
// backend is worth repeating.
type ErrorCategory string

const (
	// ErrorTransient failures (rate limits, 5xx, overload) may succeed on retry.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent failures (bad credentials, missing model) will not.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput failures are caused by the request itself.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is implemented by provider errors ([Error]) and by tool
// backend errors. Capability retry trusts the category it reports.
type CategorizedError interface {
	error
	Category() ErrorCategory
	StatusCode() int
	RetryAfter() time.Duration
}

// CategorizeStatus maps an HTTP status from a provider or backend to a category.
func CategorizeStatus(code int) ErrorCategory {
	switch {
	case code == http.StatusTooManyRequests, code >= 500 && code < 600:
		return ErrorTransient
	case code == http.StatusBadRequest, code == http.StatusNotFound, code == http.StatusUnprocessableEntity:
		return ErrorUserInput
	default:
		return ErrorPermanent
	}
}

// Error is a provider failure with its category.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int
	RetryDelay time.Duration
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error             { return e.Cause }
func (e *Error) Category() ErrorCategory   { return e.Cat }
func (e *Error) StatusCode() int           { return e.Code }
func (e *Error) RetryAfter() time.Duration { return e.RetryDelay }

// NewStatusError categorizes an HTTP failure by its status. A server
// supplied retry delay always makes it transient.
func NewStatusError(msg string, code int, retryAfter time.Duration, cause error) *Error {
	cat := CategorizeStatus(code)
	if retryAfter > 0 {
		cat = ErrorTransient
	}
	return &Error{Msg: msg, Cat: cat, Code: code, RetryDelay: retryAfter, Cause: cause}
}

// NewTransientError returns a retryable error regardless of code.
func NewTransientError(msg string, code int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: code, Cause: cause}
}

// NewPermanentError returns an error that is never retried, regardless of code.
func NewPermanentError(msg string, code int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorPermanent, Code: code, Cause: cause}
}

// CategoryOf returns the category of the first CategorizedError in err's
// chain, or "" when there is none.
func CategoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category()
	}
	return ""
}

// IsTransient reports whether err is categorized as transient.
func IsTransient(err error) bool {
	return CategoryOf(err) == ErrorTransient
}

// RetryAfterOf returns the server's requested delay carried by err, or 0.
func RetryAfterOf(err error) time.Duration {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// ParseRetryAfter reads the Retry-After header of resp as seconds or an
// HTTP date. It returns 0 when absent or unparseable.
func ParseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}
	return 0
}
