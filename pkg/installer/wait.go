package installer

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Clock tells the time for the repo refresh budget.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Waiter blocks between repo refresh attempts. Implementations must return
// ctx.Err() promptly when ctx is cancelled.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration, reason string) error
}

// SleepWaiter waits silently.
type SleepWaiter struct{}

func (SleepWaiter) Wait(ctx context.Context, d time.Duration, _ string) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ProgressWaiter shows a seconds countdown bar while waiting.
type ProgressWaiter struct {
	Out io.Writer
}

func (w ProgressWaiter) Wait(ctx context.Context, d time.Duration, reason string) error {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return SleepWaiter{}.Wait(ctx, d, reason)
	}

	bar := progressbar.NewOptions64(secs,
		progressbar.OptionSetWriter(w.Out),
		progressbar.OptionSetDescription(reason),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

// NewWaiter returns a ProgressWaiter when stderr is a terminal and a
// SleepWaiter otherwise.
func NewWaiter() Waiter {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return ProgressWaiter{Out: os.Stderr}
	}
	return SleepWaiter{}
}
