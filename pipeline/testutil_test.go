package pipeline

import "sync"

// testLogger discards output but satisfies the package Logger interface.
type testLogger struct{}

func (testLogger) Printf(format string, v ...interface{}) {}
func (testLogger) Debugf(format string, v ...interface{}) {}

// recordingSink collects every emitted event, safe for concurrent emitters.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	return events
}

func (r *recordingSink) messages() []string {
	var msgs []string
	for _, ev := range r.all() {
		if ev.Kind == KindMessage {
			msgs = append(msgs, ev.Message)
		}
	}
	return msgs
}

func (r *recordingSink) progresses(scope Scope) []int {
	var values []int
	for _, ev := range r.all() {
		if ev.Kind == KindProgress && ev.Scope == scope {
			values = append(values, ev.Progress)
		}
	}
	return values
}
