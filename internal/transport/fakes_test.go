package transport

import (
	"sync"
	"time"
)

type fakeControls struct {
	mutex    sync.Mutex
	statuses []string
	enabled  []bool
}

func (c *fakeControls) SetStatus(msg string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.statuses = append(c.statuses, msg)
}

func (c *fakeControls) SetCaptureEnabled(enabled bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.enabled = append(c.enabled, enabled)
}

func (c *fakeControls) Statuses() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string(nil), c.statuses...)
}

func (c *fakeControls) LastStatus() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.statuses) == 0 {
		return ""
	}
	return c.statuses[len(c.statuses)-1]
}

func (c *fakeControls) Enabled() []bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]bool(nil), c.enabled...)
}

type fakeTimer struct {
	delay time.Duration
	ch    chan time.Time
	fn    func()
}

// fakeClock records scheduled timers and fires them only when the test says so.
type fakeClock struct {
	mutex  sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	t := &fakeTimer{delay: d, ch: make(chan time.Time, 1)}
	c.timers = append(c.timers, t)
	return t.ch
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.timers = append(c.timers, &fakeTimer{delay: d, fn: f})
}

func (c *fakeClock) Pending() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.timers)
}

func (c *fakeClock) Delays() []time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delays := make([]time.Duration, len(c.timers))
	for i, t := range c.timers {
		delays[i] = t.delay
	}
	return delays
}

// Fire fires all pending timers.
func (c *fakeClock) Fire() {
	c.mutex.Lock()
	timers := c.timers
	c.timers = nil
	c.mutex.Unlock()

	for _, t := range timers {
		if t.fn != nil {
			t.fn()
		} else {
			t.ch <- time.Now()
		}
	}
}

type fakePlayback struct {
	mutex sync.Mutex
	clips [][]byte
}

func (p *fakePlayback) Enqueue(b []byte) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.clips = append(p.clips, b)
}

func (p *fakePlayback) Clips() [][]byte {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([][]byte(nil), p.clips...)
}

type fakeChatLog struct {
	mutex   sync.Mutex
	entries [][2]string
}

func (l *fakeChatLog) Append(sender, message string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.entries = append(l.entries, [2]string{sender, message})
}

func (l *fakeChatLog) Entries() [][2]string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([][2]string(nil), l.entries...)
}
