package controller

import (
	"io"
	"time"
)

// watchdog fires once when it has not been kicked for the configured period.
type watchdog struct {
	timer  *time.Timer
	period time.Duration
}

func newWatchdog(period time.Duration, fire func()) *watchdog {
	return &watchdog{timer: time.AfterFunc(period, fire), period: period}
}

func (w *watchdog) kick() { w.timer.Reset(w.period) }

func (w *watchdog) stop() { w.timer.Stop() }

// watchedReader kicks the watchdog whenever data arrives.
type watchedReader struct {
	r io.Reader
	w *watchdog
}

func (r *watchedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.w.kick()
	}
	return n, err
}
