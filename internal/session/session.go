// Package session wires the voice chat components together and owns their lifecycle.
package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/mgoltzsche/voicechat/internal/capture"
	"github.com/mgoltzsche/voicechat/internal/chatlog"
	"github.com/mgoltzsche/voicechat/internal/metrics"
	"github.com/mgoltzsche/voicechat/internal/playback"
	"github.com/mgoltzsche/voicechat/internal/transport"
	"github.com/mgoltzsche/voicechat/internal/ui"
	"github.com/mgoltzsche/voicechat/pkg/config"
)

// Options holds the session's configuration and its audio collaborators.
type Options struct {
	Config     config.Configuration
	Microphone capture.Microphone
	Decoder    playback.Decoder
	Player     playback.Player
	Output     io.Writer
	Metrics    *metrics.Metrics
	Clock      transport.Clock
}

// Session owns the connection, playback queue, recorder, chat log and shell of one voice chat.
type Session struct {
	Shell    *ui.Shell
	ChatLog  *chatlog.Log
	Playback *playback.Queue
	Channel  *transport.Channel
	Recorder *capture.Recorder

	agentSender string
	mutex       sync.Mutex
	opened      bool
	closed      bool
	wg          sync.WaitGroup
}

// New creates a session.
// The context bounds audio playback, which continues after Close until the queue is empty.
func New(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	shell := ui.New(opts.Output, cfg.AgentSender)
	log := chatlog.New()
	queue := playback.New(ctx, opts.Decoder, opts.Player, opts.Metrics)

	dispatcher := &transport.Dispatcher{
		Controls:     shell,
		Playback:     queue,
		ChatLog:      log,
		Metrics:      opts.Metrics,
		Clock:        opts.Clock,
		AgentSender:  cfg.AgentSender,
		TurnEndDelay: cfg.TurnEndDelay,
	}

	channel := &transport.Channel{
		URL:      cfg.ServerURL,
		Controls: shell,
		Handler:  dispatcher,
		Retry:    transport.FixedDelay(cfg.ReconnectDelay),
		Clock:    opts.Clock,
		Metrics:  opts.Metrics,
	}

	if cfg.InsecureSkipVerify {
		slog.Warn("TLS certificate verification is disabled")

		channel.DialOptions = &websocket.DialOptions{
			HTTPClient: &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				},
			},
		}
	}

	recorder := &capture.Recorder{
		Microphone: opts.Microphone,
		MimeType:   cfg.RecordingFormat,
		Controls:   shell,
		Sender:     channel,
		Metrics:    opts.Metrics,
	}

	return &Session{
		Shell:    shell,
		ChatLog:  log,
		Playback: queue,
		Channel:  channel,
		Recorder: recorder,

		agentSender: cfg.AgentSender,
	}, nil
}

// Open starts connecting to the server and rendering the transcript.
func (s *Session) Open(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return fmt.Errorf("session is closed")
	}

	if s.opened {
		return fmt.Errorf("session is already open")
	}

	s.opened = true

	sub := s.ChatLog.Subscribe(ctx)

	s.wg.Add(2)

	go func() {
		defer s.wg.Done()
		s.Shell.RenderTranscript(sub)
	}()

	go func() {
		defer s.wg.Done()

		err := s.Channel.Run(ctx)
		if err != nil {
			slog.Error(fmt.Sprintf("run connection: %s", err))
		}
	}()

	return nil
}

// Run handles user input until the input ends, the user quits or the context is done.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	return s.Shell.Run(ctx, in, s.Recorder)
}

// Turns returns the number of answers the agent gave.
func (s *Session) Turns() int {
	return len(s.ChatLog.From(s.agentSender))
}

// Close discards an active recording, closes the connection without reconnecting and
// stops rendering the transcript.
// Clips that are queued for playback are not flushed.
func (s *Session) Close() error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil
	}
	s.closed = true
	s.mutex.Unlock()

	s.Recorder.Discard()

	err := s.Channel.Close()

	s.ChatLog.Close()
	s.wg.Wait()

	slog.Info(fmt.Sprintf("session closed after %d turns", s.Turns()))

	if err != nil {
		return fmt.Errorf("close connection: %w", err)
	}

	return nil
}
