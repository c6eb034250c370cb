package workflow

import "github.com/spetersoncode/warden/event"

// Hooks observe a run. They are called synchronously from the run loop and
// must not block. Nil hooks are skipped.
type Hooks struct {
	OnRunStart  func(event.Event)
	OnStepStart func(event.Event)
	OnStepEnd   func(event.Event)
	OnRoute     func(event.Event)
	OnRunEnd    func(event.Event)
}

// hookSet fans events out to several Hooks.
type hookSet []Hooks

func (hs hookSet) emit(e event.Event) {
	for _, h := range hs {
		var fn func(event.Event)
		switch e.Type {
		case event.RunStart:
			fn = h.OnRunStart
		case event.StepStart:
			fn = h.OnStepStart
		case event.StepEnd:
			fn = h.OnStepEnd
		case event.RouteSelected:
			fn = h.OnRoute
		case event.RunEnd:
			fn = h.OnRunEnd
		}
		if fn != nil {
			fn(e)
		}
	}
}

// Recorder returns Hooks that append every event to events.
func Recorder(events *[]event.Event) Hooks {
	record := func(e event.Event) { *events = append(*events, e) }
	return Hooks{
		OnRunStart:  record,
		OnStepStart: record,
		OnStepEnd:   record,
		OnRoute:     record,
		OnRunEnd:    record,
	}
}
