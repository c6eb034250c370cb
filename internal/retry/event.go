package retry

import "time"

// EventType identifies the kind of event occurring during retry execution.
type EventType string

const (
	// EventAttemptStart fires before each attempt.
	EventAttemptStart EventType = "attempt_start"

	// EventAttemptFailed fires after a failed attempt.
	EventAttemptFailed EventType = "attempt_failed"

	// EventRetrying fires before sleeping between attempts.
	EventRetrying EventType = "retrying"

	// EventSuccess fires when an attempt succeeds.
	EventSuccess EventType = "success"

	// EventExhausted fires when all retry attempts are exhausted.
	EventExhausted EventType = "exhausted"
)

// Event represents an observable occurrence during retry execution.
type Event struct {
	Type        EventType
	Attempt     int // 1-indexed
	MaxAttempts int
	Error       error
	Delay       time.Duration // set for EventRetrying
	Retryable   bool
	Timestamp   time.Time
}

// Observer receives retry events. It is called synchronously.
type Observer func(Event)

func (o Observer) emit(e Event) {
	if o == nil {
		return
	}
	e.Timestamp = time.Now()
	o(e)
}
