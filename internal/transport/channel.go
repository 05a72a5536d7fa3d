package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mgoltzsche/voicechat/internal/metrics"
	"github.com/mgoltzsche/voicechat/internal/model"
	"github.com/mgoltzsche/voicechat/internal/protocol"
)

// ErrNotConnected is returned by Send when the connection is not open.
var ErrNotConnected = errors.New("not connected to server")

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FrameHandler receives every inbound frame in arrival order.
type FrameHandler interface {
	HandleFrame(f protocol.Frame)
}

// Channel owns the websocket connection to the voice stream endpoint.
// Run connects and, whenever the connection fails or closes, schedules
// exactly one new connection attempt after the retry policy's delay.
// Every attempt uses a new connection; two connections are never open at once.
type Channel struct {
	URL         string
	Controls    model.Controls
	Handler     FrameHandler
	Retry       RetryPolicy
	Clock       Clock
	Metrics     *metrics.Metrics
	DialOptions *websocket.DialOptions

	mutex   sync.Mutex
	conn    *websocket.Conn
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	closing bool
}

// Run runs the connect/reconnect loop until the context is done or Close is called.
func (c *Channel) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mutex.Lock()
	if c.done != nil {
		c.mutex.Unlock()
		return fmt.Errorf("channel is already running")
	}
	if c.closing {
		c.mutex.Unlock()
		return nil
	}
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mutex.Unlock()

	defer close(done)
	defer c.setState(StateClosed)

	clock := c.Clock
	if clock == nil {
		clock = realClock{}
	}

	retry := c.Retry
	if retry == nil {
		retry = FixedDelay(time.Second)
	}

	attempt := 0

	for {
		err := c.connectAndServe(ctx)
		if ctx.Err() != nil || c.isClosing() {
			return nil
		}

		if err != nil {
			slog.Warn(fmt.Sprintf("websocket connection to %s failed: %s", c.URL, err))
			c.Controls.SetStatus(model.StatusError)
			c.Controls.SetCaptureEnabled(false)
		}

		c.setState(StateClosed)
		c.Controls.SetStatus(model.StatusReconnecting)
		c.Controls.SetCaptureEnabled(false)

		attempt++
		delay := retry.Delay(attempt)
		c.Metrics.Reconnects.Inc()
		slog.Info(fmt.Sprintf("reconnecting in %s", delay))

		select {
		case <-ctx.Done():
			return nil
		case <-clock.After(delay):
		}
	}
}

// connectAndServe opens a new connection and reads frames until it is closed.
// It returns nil when the peer closed the connection normally.
func (c *Channel) connectAndServe(ctx context.Context) error {
	c.setState(StateConnecting)
	c.Metrics.ConnectionAttempts.Inc()

	conn, _, err := websocket.Dial(ctx, c.URL, c.DialOptions)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	defer conn.CloseNow()

	conn.SetReadLimit(-1)

	c.mutex.Lock()
	c.conn = conn
	c.state = StateOpen
	c.mutex.Unlock()

	defer func() {
		c.mutex.Lock()
		c.conn = nil
		c.mutex.Unlock()
	}()

	slog.Info(fmt.Sprintf("connected to %s", c.URL))

	c.Controls.SetStatus(model.StatusReady)
	c.Controls.SetCaptureEnabled(true)

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				slog.Info("server closed the connection")
				return nil
			}

			return fmt.Errorf("read: %w", err)
		}

		switch msgType {
		case websocket.MessageBinary:
			c.Handler.HandleFrame(protocol.BinaryFrame(data))
		case websocket.MessageText:
			c.Handler.HandleFrame(protocol.TextFrame(string(data)))
		}
	}
}

// Send transmits one binary message.
// When the connection is not open nothing is sent, the user is told the
// connection was lost and the capture control is disabled. The send is not retried.
func (c *Channel) Send(ctx context.Context, b []byte) error {
	c.mutex.Lock()
	conn := c.conn
	open := c.state == StateOpen && conn != nil
	c.mutex.Unlock()

	if !open {
		c.Metrics.SendFailures.Inc()
		c.Controls.SetStatus(model.StatusLost)
		c.Controls.SetCaptureEnabled(false)
		return ErrNotConnected
	}

	c.Controls.SetStatus(model.StatusSending)

	err := conn.Write(ctx, websocket.MessageBinary, b)
	if err != nil {
		c.Metrics.SendFailures.Inc()
		c.Controls.SetStatus(model.StatusLost)
		c.Controls.SetCaptureEnabled(false)
		return fmt.Errorf("send audio: %w", err)
	}

	c.Metrics.RecordingsSent.Inc()
	c.Metrics.BytesSent.Add(float64(len(b)))
	c.Controls.SetStatus(model.StatusWaiting)

	return nil
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.state
}

// Close closes the current connection and stops reconnecting.
// Pending playback is not affected.
func (c *Channel) Close() error {
	c.mutex.Lock()
	c.closing = true
	conn := c.conn
	cancel := c.cancel
	done := c.done
	c.mutex.Unlock()

	var err error

	if conn != nil {
		err = conn.Close(websocket.StatusNormalClosure, "")
	}

	if cancel != nil {
		cancel()
		<-done
	}

	return err
}

func (c *Channel) isClosing() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.closing
}

func (c *Channel) setState(s State) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state = s
}
