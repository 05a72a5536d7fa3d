package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		expected TextMessage
	}{
		{
			name:     "agent without space",
			input:    "AGENT:Hello",
			expected: TextMessage{Sender: "AGENT", Message: "Hello"},
		},
		{
			name:     "user tag",
			input:    "USER1:Hi",
			expected: TextMessage{Sender: "USER1", Message: "Hi"},
		},
		{
			name:     "space after separator",
			input:    "Agent: How can I help you?",
			expected: TextMessage{Sender: "Agent", Message: " How can I help you?"},
		},
		{
			name:     "empty message",
			input:    "Human:",
			expected: TextMessage{Sender: "Human", Message: ""},
		},
		{
			name:     "separator is not validated",
			input:    "Human|hi",
			expected: TextMessage{Sender: "Human", Message: "hi"},
		},
		{
			name:     "multi-byte characters",
			input:    "Ärger:ö",
			expected: TextMessage{Sender: "Ärger", Message: "ö"},
		},
		{
			name:     "short tag is taken verbatim",
			input:    "Bot: hi there",
			expected: TextMessage{Sender: "Bot: ", Message: "i there"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := ParseText(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, msg)
		})
	}
}

func TestParseTextMalformed(t *testing.T) {
	for _, input := range []string{"", "Agent", "ab"} {
		_, err := ParseText(input)
		require.ErrorIs(t, err, ErrMalformedFrame, "input %q", input)
	}
}

func TestTextMessageIsFrom(t *testing.T) {
	require.True(t, TextMessage{Sender: "AGENT"}.IsFrom("agent"))
	require.True(t, TextMessage{Sender: "Agent"}.IsFrom("agent"))
	require.False(t, TextMessage{Sender: "Human"}.IsFrom("agent"))
}

func TestFormatText(t *testing.T) {
	require.Equal(t, "Agent: hello", FormatText("Agent", "hello"))
	require.Equal(t, "Bot  : hi", FormatText("Bot", "hi"))
	require.Equal(t, "Assis: hi", FormatText("Assistant", "hi"))

	msg, err := ParseText(FormatText("Human", "received 3 bytes"))
	require.NoError(t, err)
	require.Equal(t, TextMessage{Sender: "Human", Message: " received 3 bytes"}, msg)
}

func TestFrameIsKeepAlive(t *testing.T) {
	require.True(t, BinaryFrame(nil).IsKeepAlive())
	require.True(t, BinaryFrame([]byte{}).IsKeepAlive())
	require.False(t, BinaryFrame([]byte{1}).IsKeepAlive())
	require.False(t, TextFrame("").IsKeepAlive())
}
