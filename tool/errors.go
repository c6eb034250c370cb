package tool

import (
	"fmt"
	"time"

	ai "github.com/spetersoncode/warden"
)

// ErrToolNotFound is returned when a tool call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ErrUpstream reports a non-success HTTP answer from a tool backend. It is
// an ai.CategorizedError: 429 and 5xx answers are transient.
type ErrUpstream struct {
	Service    string
	Code       int
	Body       string
	RetryDelay time.Duration
}

func (e *ErrUpstream) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tool: %s returned status %d", e.Service, e.Code)
	}
	return fmt.Sprintf("tool: %s returned status %d: %s", e.Service, e.Code, e.Body)
}

func (e *ErrUpstream) Category() ai.ErrorCategory {
	if e.RetryDelay > 0 {
		return ai.ErrorTransient
	}
	return ai.CategorizeStatus(e.Code)
}

func (e *ErrUpstream) StatusCode() int           { return e.Code }
func (e *ErrUpstream) RetryAfter() time.Duration { return e.RetryDelay }

var _ ai.CategorizedError = (*ErrUpstream)(nil)
