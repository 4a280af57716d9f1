package pipeline

import (
	"reflect"
	"testing"
)

func TestProgressTracker_emitsOnlyOnChange(t *testing.T) {
	sink := &recordingSink{}
	p := newProgressTracker(sink, ScopeUpload, "")

	for _, percent := range []int{0, 0, 5, 5, 5, 17, 17, 100, 100} {
		p.Update(percent)
	}

	got := sink.progresses(ScopeUpload)
	want := []int{0, 5, 17, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("progress values = %v, want %v", got, want)
	}
}

func TestProgressTracker_neverDecreases(t *testing.T) {
	sink := &recordingSink{}
	p := newProgressTracker(sink, ScopeCapture, "")

	for _, percent := range []int{40, 30, 50, 10, 60} {
		p.Update(percent)
	}

	got := sink.progresses(ScopeCapture)
	want := []int{40, 50, 60}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("progress values = %v, want %v", got, want)
	}
}

func TestProgressTracker_clamps(t *testing.T) {
	sink := &recordingSink{}
	p := newProgressTracker(sink, ScopeUpload, "")

	p.Update(-5)
	p.Update(250)

	got := sink.progresses(ScopeUpload)
	want := []int{0, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("progress values = %v, want %v", got, want)
	}
}

func TestProgressTracker_companionMessages(t *testing.T) {
	sink := &recordingSink{}
	p := newProgressTracker(sink, ScopeUpload, "Upload video")

	p.Update(50)
	p.Update(50)
	p.Update(100)

	wantMsgs := []string{
		"Upload video: 50% complete",
		"Upload video: 100% complete",
	}
	if got := sink.messages(); !reflect.DeepEqual(got, wantMsgs) {
		t.Errorf("messages = %v, want %v", got, wantMsgs)
	}
	wantProgress := []int{50, 100}
	if got := sink.progresses(ScopeUpload); !reflect.DeepEqual(got, wantProgress) {
		t.Errorf("progress values = %v, want %v", got, wantProgress)
	}
}

func TestMessage_nilSink(t *testing.T) {
	// Must not panic
	Message(nil, ScopeCapture, "hello")
}
