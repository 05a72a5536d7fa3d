package chatlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogAppendPreservesOrder(t *testing.T) {
	testee := New()

	testee.Append("Human", "I need support with my order.")
	testee.Append("Agent", "Hello! How can I help you?")
	testee.Append("Human", "Thanks")

	require.Equal(t, []Entry{
		{Sender: "Human", Message: "I need support with my order."},
		{Sender: "Agent", Message: "Hello! How can I help you?"},
		{Sender: "Human", Message: "Thanks"},
	}, testee.Entries())
	require.Equal(t, 3, testee.Len())
	require.Len(t, testee.From("Human"), 2)
	require.Equal(t, []Entry{{Sender: "Agent", Message: "Hello! How can I help you?"}}, testee.From("agent"))
}

func TestLogEntriesReturnsCopy(t *testing.T) {
	testee := New()
	testee.Append("Agent", "hi")

	entries := testee.Entries()
	entries[0].Message = "changed"

	require.Equal(t, "hi", testee.Entries()[0].Message)
}

func TestLogSubscribe(t *testing.T) {
	testee := New()
	testee.Append("Agent", "before subscription")

	s := testee.Subscribe(context.Background())
	defer s.Stop()

	testee.Append("Human", "first")
	testee.Append("Agent", "second")

	for _, expected := range []string{"first", "second"} {
		select {
		case e := <-s.ResultChan():
			require.Equal(t, expected, e.Message)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for entry %q", expected)
		}
	}

	testee.Close()

	_, ok := <-s.ResultChan()
	require.False(t, ok)
}
