package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// uploadHours maps the frequency selector to the hours of day at which an
// upload cycle fires. A closed enumeration, not a cron grammar.
var uploadHours = map[int][]int{
	1: {0},
	2: {0, 12},
	3: {0, 8, 16},
	4: {0, 6, 12, 18},
	5: {0, 5, 10, 15, 20},
	6: {0, 4, 8, 12, 16, 20},
}

// FireHours returns the hour-of-day set for a frequency selector, or
// ErrBadFrequency for a selector outside 1..6.
func FireHours(frequency int) ([]int, error) {
	hours, ok := uploadHours[frequency]
	if !ok {
		return nil, ErrBadFrequency
	}
	return hours, nil
}

// NextFireTime returns the first instant strictly after now that falls on
// minute zero of one of the given hours.
func NextFireTime(now time.Time, hours []int) time.Time {
	for day := 0; day <= 1; day++ {
		base := now.AddDate(0, 0, day)
		for _, hour := range hours {
			at := time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, now.Location())
			if at.After(now) {
				return at
			}
		}
	}
	// Hour 0 of tomorrow always qualifies, so this is unreachable.
	return time.Time{}
}

// Client is an authenticated handle for the network stages of one cycle.
type Client interface {
	// Upload streams the assembled video and returns its durable URL.
	Upload(ctx context.Context, title, videoFile string, onProgress func(int)) (string, error)
	// AppendRow logs one uploaded video to the configured spreadsheet.
	AppendRow(ctx context.Context, uploadedAt time.Time, videoURL string) error
}

// Authenticator produces a Client, performing interactive consent when no
// persisted token exists.
type Authenticator interface {
	Authorize(ctx context.Context) (Client, error)
}

// Scheduler fires upload cycles at the hours selected by a frequency
// selector. At most one cycle runs at a time; a firing that lands while a
// cycle is in flight is dropped, never queued.
type Scheduler struct {
	assembler    *Assembler
	auth         Authenticator
	sheetEnabled bool
	sink         Sink
	logger       Logger

	inFlight atomic.Bool
	now      func() time.Time
}

// NewScheduler creates an upload scheduler. When sheetEnabled is false the
// sheet-append stage is skipped entirely.
func NewScheduler(assembler *Assembler, auth Authenticator, sheetEnabled bool, sink Sink, logger Logger) *Scheduler {
	return &Scheduler{
		assembler:    assembler,
		auth:         auth,
		sheetEnabled: sheetEnabled,
		sink:         sink,
		logger:       logger,
		now:          time.Now,
	}
}

// InFlight reports whether a cycle is currently running.
func (s *Scheduler) InFlight() bool {
	return s.inFlight.Load()
}

// Start validates the frequency selector and begins firing cycles over
// inputDir at the selected hours. The returned handle cancels future
// firings only; a cycle already in flight runs to completion.
func (s *Scheduler) Start(frequency int, inputDir string, fps int) (*Schedule, error) {
	hours, err := FireHours(frequency)
	if err != nil {
		return nil, err
	}

	sch := &Schedule{done: make(chan struct{})}
	go s.loop(sch, hours, inputDir, fps)

	s.logger.Printf("Upload schedule started: frequency %d, firing at hours %v", frequency, hours)
	return sch, nil
}

// Schedule is the handle for a running upload schedule.
type Schedule struct {
	done     chan struct{}
	stopOnce sync.Once
}

// Stop cancels future firings. Safe to call more than once.
func (sch *Schedule) Stop() {
	sch.stopOnce.Do(func() {
		close(sch.done)
	})
}

func (s *Scheduler) loop(sch *Schedule, hours []int, inputDir string, fps int) {
	for {
		next := NextFireTime(s.now(), hours)
		timer := time.NewTimer(next.Sub(s.now()))

		select {
		case <-sch.done:
			timer.Stop()
			return
		case <-timer.C:
			s.RunCycle(context.Background(), inputDir, fps)
		}
	}
}

// RunCycle runs one assemble/authenticate/upload/append cycle. The
// single-flight guard is released on every exit path; a failure at any
// stage is surfaced through the sink and ends the cycle, with the next
// scheduled firing as the only retry mechanism.
func (s *Scheduler) RunCycle(ctx context.Context, inputDir string, fps int) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer s.inFlight.Store(false)

	cycleID := uuid.NewString()
	started := s.now()
	s.logger.Debugf("Upload cycle %s starting", cycleID)

	if err := s.runStages(ctx, inputDir, fps, started); err != nil {
		s.logger.Printf("Upload cycle %s failed: %v", cycleID, err)
		Message(s.sink, ScopeUpload, "Upload failed: "+err.Error())
		return
	}
	s.logger.Printf("Upload cycle %s complete", cycleID)
}

func (s *Scheduler) runStages(ctx context.Context, inputDir string, fps int, started time.Time) error {
	Message(s.sink, ScopeCapture, "Creating video...")
	videoFile, err := s.assembler.Assemble(inputDir, fps)
	if err != nil {
		return err
	}

	client, err := s.auth.Authorize(ctx)
	if err != nil {
		return err
	}

	Message(s.sink, ScopeUpload, "Uploading video...")
	progress := newProgressTracker(s.sink, ScopeUpload, "Upload video")
	videoURL, err := client.Upload(ctx, VideoTitle(started), videoFile, progress.Update)
	if err != nil {
		return err
	}
	Message(s.sink, ScopeUpload, "Uploaded: "+videoURL)

	if s.sheetEnabled {
		// Best effort: the upload already succeeded and is not rolled back.
		if err := client.AppendRow(ctx, started, videoURL); err != nil {
			s.logger.Printf("Sheet append failed: %v", err)
			Message(s.sink, ScopeUpload, "Sheet append failed: "+err.Error())
		}
	}
	return nil
}
