// Package tween animates transitions between point sets. Intermediate frames
// are cosmetic and carry no correlation guarantee; the final frame is always
// exactly the target set, so the exact-r contract holds at rest.
package tween

import (
	"sync"
	"time"

	"github.com/JiarongF/StatsLearning/domain/stimulus"
)

// Scheduler drives per-frame callbacks. The production implementation is a
// ticker; tests step frames by hand. The returned stop function must be
// idempotent.
type Scheduler interface {
	Start(interval time.Duration, onFrame func(elapsed time.Duration)) (stop func())
}

// FrameFunc receives each interpolated point set. done is true exactly once,
// on the final frame.
type FrameFunc func(points []stimulus.Point, done bool)

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// TickerScheduler drives frames from a time.Ticker on a background goroutine.
type TickerScheduler struct{}

// Start begins ticking at the given interval.
func (TickerScheduler) Start(interval time.Duration, onFrame func(elapsed time.Duration)) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	started := time.Now()

	go func() {
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				onFrame(now.Sub(started))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// ManualScheduler steps frames synchronously; for tests.
type ManualScheduler struct {
	mu      sync.Mutex
	onFrame func(elapsed time.Duration)
	stopped bool
}

// Start records the frame callback; nothing runs until Step.
func (s *ManualScheduler) Start(interval time.Duration, onFrame func(elapsed time.Duration)) (stop func()) {
	s.mu.Lock()
	s.onFrame = onFrame
	s.stopped = false
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
	}
}

// Step fires one frame at the given elapsed time. Returns false once the
// tween has stopped.
func (s *ManualScheduler) Step(elapsed time.Duration) bool {
	s.mu.Lock()
	onFrame := s.onFrame
	stopped := s.stopped
	s.mu.Unlock()
	if stopped || onFrame == nil {
		return false
	}
	onFrame(elapsed)
	return true
}

// valueMode holds the r-interpolation state for value tweens.
type valueMode struct {
	fromR float64
	toR   float64
	remix func(r float64) []stimulus.Point
}

// Tween is the cancel handle for one running interpolation.
type Tween struct {
	stop func()

	mu       sync.Mutex
	from     []stimulus.Point
	to       []stimulus.Point
	duration time.Duration
	onFrame  FrameFunc
	value    *valueMode
	last     []stimulus.Point
	finished bool
}

// Animator owns at most one running tween. Starting a new tween atomically
// cancels the in-flight one, so two interpolation loops can never race to set
// the displayed point set.
type Animator struct {
	scheduler Scheduler
	interval  time.Duration

	mu      sync.Mutex
	current *Tween
}

// NewAnimator creates an Animator driven by the given scheduler. A nil
// scheduler gets a TickerScheduler.
func NewAnimator(scheduler Scheduler) *Animator {
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	return &Animator{scheduler: scheduler, interval: DefaultFrameInterval}
}

// Start tweens per-point from one set to another over duration, invoking
// onFrame with each interpolated set. Any tween already running on this
// Animator is cancelled first and the new tween starts from its last emitted
// positions, never from a queued state.
func (a *Animator) Start(from, to []stimulus.Point, duration time.Duration, onFrame FrameFunc) *Tween {
	return a.launch(&Tween{
		from:     clonePoints(from),
		to:       clonePoints(to),
		duration: duration,
		onFrame:  onFrame,
	})
}

// StartValue tweens the displayed correlation itself, regenerating the point
// set from the same cached base at every intermediate r. More work per frame
// than point interpolation, but the sample shape stays coherent at every
// tick. remix must map an r value to its exact point set.
func (a *Animator) StartValue(fromR, toR float64, duration time.Duration, remix func(r float64) []stimulus.Point, onFrame FrameFunc) *Tween {
	return a.launch(&Tween{
		to:       clonePoints(remix(toR)),
		duration: duration,
		onFrame:  onFrame,
		value:    &valueMode{fromR: fromR, toR: toR, remix: remix},
	})
}

func (a *Animator) launch(t *Tween) *Tween {
	a.mu.Lock()
	if a.current != nil {
		if last := a.current.cancel(); last != nil && t.value == nil {
			t.from = last
		}
	}
	a.current = t
	a.mu.Unlock()

	t.stop = a.scheduler.Start(a.interval, t.frame)
	return t
}

// Cancel stops the tween. The displayed set stays at the last emitted frame.
func (t *Tween) Cancel() {
	t.cancel()
}

// cancel stops the tween and returns the last emitted frame, if any.
func (t *Tween) cancel() []stimulus.Point {
	if t.stop != nil {
		t.stop()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = true
	return t.last
}

// Finished reports whether the tween has completed or been cancelled.
func (t *Tween) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// frame computes and emits one interpolation step.
func (t *Tween) frame(elapsed time.Duration) {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return
	}

	progress := 1.0
	if t.duration > 0 {
		progress = float64(elapsed) / float64(t.duration)
	}
	if progress > 1 {
		progress = 1
	}
	eased := easeOutCubic(progress)

	var points []stimulus.Point
	switch {
	case progress >= 1:
		// Snap to the exact target set; no interpolation residue.
		points = clonePoints(t.to)
	case t.value != nil:
		r := t.value.fromR + (t.value.toR-t.value.fromR)*eased
		points = t.value.remix(r)
	case t.from == nil || len(t.from) != len(t.to):
		points = clonePoints(t.to)
		progress = 1
	default:
		points = make([]stimulus.Point, len(t.to))
		for i := range t.to {
			points[i] = stimulus.Point{
				X: t.from[i].X + (t.to[i].X-t.from[i].X)*eased,
				Y: t.from[i].Y + (t.to[i].Y-t.from[i].Y)*eased,
			}
		}
	}

	done := progress >= 1
	t.last = points
	if done {
		t.finished = true
	}
	onFrame := t.onFrame
	stop := t.stop
	t.mu.Unlock()

	onFrame(points, done)
	if done && stop != nil {
		stop()
	}
}

// easeOutCubic is the study's standard easing curve.
func easeOutCubic(t float64) float64 {
	inv := 1 - t
	return 1 - inv*inv*inv
}

func clonePoints(points []stimulus.Point) []stimulus.Point {
	if points == nil {
		return nil
	}
	out := make([]stimulus.Point, len(points))
	copy(out, points)
	return out
}
