package transport

import "time"

// Clock schedules delayed work. It is replaced with a fake in tests.
type Clock interface {
	After(d time.Duration) <-chan time.Time
	AfterFunc(d time.Duration, f func())
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (realClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// RetryPolicy returns the delay before the given reconnect attempt (starting at 1).
type RetryPolicy interface {
	Delay(attempt int) time.Duration
}

// FixedDelay retries indefinitely using the same delay.
type FixedDelay time.Duration

func (d FixedDelay) Delay(int) time.Duration {
	return time.Duration(d)
}
