package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mgoltzsche/voicechat/internal/chatlog"
	"github.com/mgoltzsche/voicechat/internal/model"
)

type fakeToggler struct {
	toggles   int
	recording bool
}

func (t *fakeToggler) Toggle(context.Context) error {
	t.toggles++
	t.recording = !t.recording
	return nil
}

func (t *fakeToggler) Recording() bool {
	return t.recording
}

func TestShellStatus(t *testing.T) {
	var out bytes.Buffer
	testee := New(&out, "agent")

	require.Equal(t, model.StatusIdle, testee.Status())
	require.False(t, testee.CaptureEnabled())

	testee.SetStatus(model.StatusReady)
	testee.SetStatus(model.StatusReady)
	testee.SetCaptureEnabled(true)

	require.Equal(t, model.StatusReady, testee.Status())
	require.True(t, testee.CaptureEnabled())
	require.Equal(t, "[Ready to talk]\n", out.String())
}

func TestShellRunTogglesWhenEnabled(t *testing.T) {
	var out bytes.Buffer
	testee := New(&out, "agent")
	testee.SetCaptureEnabled(true)
	rec := &fakeToggler{}

	err := testee.Run(context.Background(), strings.NewReader("\n\nq\n\n"), rec)

	require.NoError(t, err)
	require.Equal(t, 2, rec.toggles)
	require.Contains(t, out.String(), "<enter> Start Voice Message\n<enter> Stop Voice Message\n<enter> Start Voice Message\n")
}

func TestShellRunIgnoresPressWhenDisabled(t *testing.T) {
	var out bytes.Buffer
	testee := New(&out, "agent")
	testee.SetStatus(model.StatusWaiting)
	rec := &fakeToggler{}

	err := testee.Run(context.Background(), strings.NewReader("\n"), rec)

	require.NoError(t, err)
	require.Equal(t, 0, rec.toggles)
	require.Contains(t, out.String(), "(disabled: Waiting for response...)")
}

func TestShellRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	testee := New(&bytes.Buffer{}, "agent")

	err := testee.Run(ctx, strings.NewReader(""), &fakeToggler{})
	require.NoError(t, err)
}

func TestShellRenderTranscript(t *testing.T) {
	var out bytes.Buffer
	testee := New(&out, "agent")
	log := chatlog.New()
	sub := log.Subscribe(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		testee.RenderTranscript(sub)
	}()

	log.Append("Human", " what is my balance?")
	log.Append("Agent", "42 euros")
	log.Close()
	<-done

	require.Equal(t, "Human: what is my balance?\n\033[1mAgent:\033[0m 42 euros\n", out.String())
}
