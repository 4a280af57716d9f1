package pipeline

import "fmt"

// Scope identifies which half of the pipeline an event belongs to.
// Assembly reports under the capture scope; the network stages report
// under the upload scope.
type Scope string

const (
	ScopeCapture Scope = "capture"
	ScopeUpload  Scope = "upload"
)

// EventKind distinguishes free-text status lines from percentage updates.
type EventKind string

const (
	KindMessage  EventKind = "message"
	KindProgress EventKind = "progress"
)

// Event is the only data the pipeline exposes to its observer.
type Event struct {
	Scope    Scope     `json:"scope"`
	Kind     EventKind `json:"kind"`
	Message  string    `json:"message,omitempty"`
	Progress int       `json:"progress,omitempty"`
}

// Sink receives pipeline events. It must not block for long; emitters call
// it inline from timer and process-monitoring goroutines.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Emit(ev Event) { f(ev) }

// Message emits a free-text status line to sink. A nil sink is allowed.
func Message(sink Sink, scope Scope, msg string) {
	if sink == nil {
		return
	}
	sink.Emit(Event{Scope: scope, Kind: KindMessage, Message: msg})
}

// progressTracker emits percentage events only when the value advances.
// Values are clamped to 0..100 and never repeated or decreased within one
// operation, so a monotonic byte or frame counter produces at most 101
// events no matter how often it is sampled. When a label is set, each
// advance also emits a companion "<label>: N% complete" message.
type progressTracker struct {
	sink  Sink
	scope Scope
	label string
	last  int
}

func newProgressTracker(sink Sink, scope Scope, label string) *progressTracker {
	return &progressTracker{sink: sink, scope: scope, label: label, last: -1}
}

func (p *progressTracker) Update(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent <= p.last {
		return
	}
	p.last = percent
	if p.sink == nil {
		return
	}
	p.sink.Emit(Event{Scope: p.scope, Kind: KindProgress, Progress: percent})
	if p.label != "" {
		p.sink.Emit(Event{
			Scope:   p.scope,
			Kind:    KindMessage,
			Message: fmt.Sprintf("%s: %d%% complete", p.label, percent),
		})
	}
}
