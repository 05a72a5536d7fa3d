package transport

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mgoltzsche/voicechat/internal/metrics"
	"github.com/mgoltzsche/voicechat/internal/model"
	"github.com/mgoltzsche/voicechat/internal/protocol"
)

type Playback interface {
	Enqueue(b []byte)
}

type ChatLog interface {
	Append(sender, message string)
}

// Dispatcher routes inbound frames: audio to the playback queue, text to the chat log.
type Dispatcher struct {
	Controls     model.Controls
	Playback     Playback
	ChatLog      ChatLog
	Metrics      *metrics.Metrics
	Clock        Clock
	AgentSender  string
	TurnEndDelay time.Duration
}

func (d *Dispatcher) HandleFrame(f protocol.Frame) {
	d.Metrics.FramesReceived.WithLabelValues(f.Type.String()).Inc()

	switch f.Type {
	case protocol.FrameBinary:
		if f.IsKeepAlive() {
			slog.Debug("received empty audio frame")
			return
		}

		slog.Debug(fmt.Sprintf("received %d bytes of audio", len(f.Binary)))

		// The server is about to stream its response.
		d.Controls.SetCaptureEnabled(false)
		d.Playback.Enqueue(f.Binary)
	case protocol.FrameText:
		msg, err := protocol.ParseText(f.Text)
		if err != nil {
			d.Metrics.MalformedFrames.Inc()
			slog.Warn(fmt.Sprintf("dropping text frame: %s", err))
			return
		}

		d.ChatLog.Append(msg.Sender, msg.Message)

		if msg.IsFrom(d.AgentSender) {
			d.endTurn()
		}
	}
}

// endTurn re-enables the capture control after the turn end delay.
func (d *Dispatcher) endTurn() {
	clock := d.Clock
	if clock == nil {
		clock = realClock{}
	}

	clock.AfterFunc(d.TurnEndDelay, func() {
		d.Controls.SetCaptureEnabled(true)
		d.Controls.SetStatus(model.StatusReady)
	})
}
