package client

import (
	"time"

	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/internal/retry"
)

// EventType identifies the kind of event occurring during client operations.
type EventType string

const (
	// EventRequestStart fires before an API request begins.
	EventRequestStart EventType = "request_start"

	// EventRequestComplete fires after an API request completes successfully.
	EventRequestComplete EventType = "request_complete"

	// EventRequestError fires when an API request fails after all attempts.
	EventRequestError EventType = "request_error"

	// EventRetry fires for each retry event of a request.
	EventRetry EventType = "retry"
)

// Event represents an observable occurrence during client operations.
type Event struct {
	Type      EventType
	Operation string
	Provider  ai.Provider
	Model     string
	Duration  time.Duration
	Usage     *ai.Usage
	Error     error
	Retry     *retry.Event
	Timestamp time.Time
}

func (c *Client) emit(e Event) {
	if c.onEvent == nil {
		return
	}
	e.Timestamp = time.Now()
	c.onEvent(e)
}
