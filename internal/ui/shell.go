package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/mgoltzsche/voicechat/internal/model"
	"github.com/mgoltzsche/voicechat/internal/pubsub"
)

const (
	labelStart = "Start Voice Message"
	labelStop  = "Stop Voice Message"
	bold       = "\033[1m"
	reset      = "\033[0m"
)

// Toggler is the capture control's action.
type Toggler interface {
	Toggle(ctx context.Context) error
	Recording() bool
}

// Shell is a line based terminal UI.
// It shows the status text and transcript and maps the enter key to the capture control.
type Shell struct {
	out         io.Writer
	agentSender string
	mutex       sync.Mutex
	status      string
	enabled     bool
}

func New(out io.Writer, agentSender string) *Shell {
	return &Shell{
		out:         out,
		agentSender: agentSender,
		status:      model.StatusIdle,
	}
}

func (s *Shell) SetStatus(msg string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if msg == s.status {
		return
	}

	s.status = msg
	fmt.Fprintf(s.out, "[%s]\n", msg)
}

func (s *Shell) SetCaptureEnabled(enabled bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.enabled = enabled
}

func (s *Shell) Status() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.status
}

func (s *Shell) CaptureEnabled() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.enabled
}

// RenderTranscript prints chat entries as they arrive until the subscription ends.
func (s *Shell) RenderTranscript(sub pubsub.Subscription[model.ChatEntry]) {
	for e := range sub.ResultChan() {
		s.mutex.Lock()
		fmt.Fprintln(s.out, s.formatEntry(e))
		s.mutex.Unlock()
	}
}

func (s *Shell) formatEntry(e model.ChatEntry) string {
	msg := strings.TrimLeft(e.Message, " ")

	if strings.EqualFold(e.Sender, s.agentSender) {
		return fmt.Sprintf("%s%s:%s %s", bold, e.Sender, reset, msg)
	}

	return fmt.Sprintf("%s: %s", e.Sender, msg)
}

// Run reads commands line by line until the input ends, "q" is entered or the context is done.
// An empty line presses the capture control.
func (s *Shell) Run(ctx context.Context, in io.Reader, rec Toggler) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}

		errs <- scanner.Err()
	}()

	s.prompt(rec)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}

				return nil
			}

			switch strings.TrimSpace(line) {
			case "q", "quit", "exit":
				return nil
			case "":
				s.press(ctx, rec)
			default:
				s.mutex.Lock()
				fmt.Fprintln(s.out, "press enter to toggle recording, q to quit")
				s.mutex.Unlock()
			}

			s.prompt(rec)
		}
	}
}

func (s *Shell) press(ctx context.Context, rec Toggler) {
	if !s.CaptureEnabled() {
		s.mutex.Lock()
		fmt.Fprintf(s.out, "(disabled: %s)\n", s.status)
		s.mutex.Unlock()
		return
	}

	if err := rec.Toggle(ctx); err != nil {
		slog.Debug(fmt.Sprintf("toggle recording: %s", err))
	}
}

func (s *Shell) prompt(rec Toggler) {
	label := labelStart
	if rec.Recording() {
		label = labelStop
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.enabled {
		fmt.Fprintf(s.out, "<enter> %s\n", label)
	}
}
