package cli

import (
	"flag"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFlagSet() (*flag.FlagSet, *string, *bool) {
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	url := flags.String("server-url", "ws://localhost:8000/voice_stream", "server URL")
	insecure := flags.Bool("insecure", false, "skip TLS verification")
	return flags, url, insecure
}

func TestParseFlagsFromEnvVars(t *testing.T) {
	flags, url, insecure := newFlagSet()

	err := parseFlags(flags, "VOICECHAT_", nil, []string{
		"VOICECHAT_SERVER_URL=wss://example.org/voice_stream",
		"VOICECHAT_INSECURE=true",
		"HOME=/root",
	})

	require.NoError(t, err)
	require.Equal(t, "wss://example.org/voice_stream", *url)
	require.True(t, *insecure)
}

func TestParseFlagsArgsOverrideEnvVars(t *testing.T) {
	flags, url, _ := newFlagSet()

	err := parseFlags(flags, "VOICECHAT_", []string{"-server-url", "ws://other:9000/voice_stream"}, []string{
		"VOICECHAT_SERVER_URL=wss://example.org/voice_stream",
	})

	require.NoError(t, err)
	require.Equal(t, "ws://other:9000/voice_stream", *url)
}

func TestParseFlagsRejectsUnknownEnvVar(t *testing.T) {
	flags, _, _ := newFlagSet()

	err := parseFlags(flags, "VOICECHAT_", nil, []string{"VOICECHAT_SERVER=x"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "VOICECHAT_SERVER")
}

func TestParseFlagsRejectsInvalidEnvVarValue(t *testing.T) {
	flags, _, _ := newFlagSet()

	err := parseFlags(flags, "VOICECHAT_", nil, []string{"VOICECHAT_INSECURE=maybe"})

	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	level, err := parseLogLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)

	level, err = parseLogLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, level)

	_, err = parseLogLevel("TRACE")
	require.Error(t, err)
}
