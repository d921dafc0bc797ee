package timing

import (
	"log/slog"
	"time"
)

const (
	// busyWaitThreshold is the point below which we stop trusting
	// time.Sleep's wakeup accuracy and spin instead.
	busyWaitThreshold = 2 * time.Millisecond
	// sleepSlack is shaved off a long sleep so the subsequent busy-wait
	// tail, not the OS scheduler, lands on the target time.
	sleepSlack = time.Millisecond
	// lateThreshold: a frame finishing this far behind schedule gives up
	// trying to catch up and just resets the clock from now.
	lateThreshold = -5 * time.Millisecond
	// driftCheckInterval is how often (in frames) we compare wall-clock
	// time against the schedule and nudge it back into line.
	driftCheckInterval = 60
	// driftCorrectionThreshold is the minimum accumulated drift worth
	// correcting for.
	driftCorrectionThreshold = 10 * time.Millisecond
)

// AdaptiveLimiter paces frames against a running deadline rather than a
// fixed-period ticker: it sleeps for the bulk of the wait, then busy-waits
// the last stretch for sub-millisecond accuracy, and periodically corrects
// for accumulated drift.
type AdaptiveLimiter struct {
	frameDuration time.Duration
	deadline      time.Time
	frameCount    int64
}

// NewAdaptiveLimiter returns a limiter with its first deadline set to now.
func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		frameDuration: FrameDuration(),
		deadline:      time.Now(),
	}
}

// WaitForNextFrame blocks until the current deadline, then advances it by
// one frame's duration and occasionally re-syncs against actual elapsed
// time to correct for drift.
func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	remaining := a.deadline.Sub(now)

	switch {
	case remaining > busyWaitThreshold:
		time.Sleep(remaining - sleepSlack)
		a.spinUntilDeadline()
	case remaining > 0:
		a.spinUntilDeadline()
	case remaining < lateThreshold:
		// Far enough behind that catching up isn't worth it.
		a.deadline = now
	}

	a.deadline = a.deadline.Add(a.frameDuration)
	a.frameCount++

	if a.frameCount%driftCheckInterval == 0 {
		a.correctDrift()
	}
}

func (a *AdaptiveLimiter) spinUntilDeadline() {
	for time.Now().Before(a.deadline) {
	}
}

// correctDrift compares where the deadline landed against where it should
// be after frameCount frames and nudges it a tenth of the way back, rather
// than snapping instantly and producing an audible stutter.
func (a *AdaptiveLimiter) correctDrift() {
	scheduleStart := a.deadline.Add(-time.Duration(a.frameCount) * a.frameDuration)
	actual := time.Now()
	drift := actual.Sub(a.deadline)

	if drift.Abs() <= driftCorrectionThreshold {
		return
	}

	a.deadline = a.deadline.Add(drift / 10)
	slog.Debug("frame timing drift correction",
		"drift_ms", drift.Milliseconds(),
		"fps", float64(a.frameCount)*float64(time.Second)/float64(actual.Sub(scheduleStart)))
}

// Reset restarts pacing from the current time, e.g. after resuming from a
// pause that shouldn't count as accumulated drift.
func (a *AdaptiveLimiter) Reset() {
	a.deadline = time.Now()
	a.frameCount = 0
}
