package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	file := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(file, []byte(content), 0600)
	require.NoError(t, err)
	return file
}

func TestFromFile(t *testing.T) {
	file := writeConfig(t, `
serverURL: wss://voice.example.org/voice_stream
outputDevice: "2"
reconnectDelay: 3s
turnEndDelay: 250ms
insecureSkipVerify: true
`)

	cfg, err := FromFile(file)

	require.NoError(t, err)
	require.Equal(t, "wss://voice.example.org/voice_stream", cfg.ServerURL)
	require.Equal(t, "2", cfg.OutputDevice)
	require.Equal(t, 3*time.Second, cfg.ReconnectDelay)
	require.Equal(t, 250*time.Millisecond, cfg.TurnEndDelay)
	require.True(t, cfg.InsecureSkipVerify)
	require.Equal(t, DefaultSampleRate, cfg.SampleRate, "default sample rate")
	require.Equal(t, DefaultAgentSender, cfg.AgentSender, "default agent sender")
	require.NoError(t, cfg.Validate())
}

func TestFromFileRejectsUnknownField(t *testing.T) {
	file := writeConfig(t, "endpoint: ws://localhost:8000/voice_stream\n")

	_, err := FromFile(file)

	require.Error(t, err)
}

func TestFromFileRejectsInvalidDuration(t *testing.T) {
	file := writeConfig(t, "reconnectDelay: soon\n")

	_, err := FromFile(file)

	require.Error(t, err)
	require.Contains(t, err.Error(), "reconnectDelay")
}

func TestFromFileMissing(t *testing.T) {
	cfg, err := FromFile(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	require.Equal(t, Default(), cfg)
}

func TestFlagSet(t *testing.T) {
	file := writeConfig(t, "agentSender: Robot\n")
	cfg := Default()
	testee := &Flag{Config: &cfg}

	err := testee.Set(file)

	require.NoError(t, err)
	require.True(t, testee.IsSet)
	require.Equal(t, file, testee.String())
	require.Equal(t, "Robot", cfg.AgentSender)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.AgentSender = "assistant"
	require.Error(t, cfg.Validate(), "agent sender length")

	cfg = Default()
	cfg.Channels = 0
	require.Error(t, cfg.Validate(), "channels")

	cfg = Default()
	cfg.ServerURL = ""
	require.Error(t, cfg.Validate(), "server URL")
}

func TestFlagSetRejectsInvalidConfig(t *testing.T) {
	file := writeConfig(t, "agentSender: assistant\n")
	cfg := Default()
	testee := &Flag{Config: &cfg}

	err := testee.Set(file)

	require.Error(t, err)
	require.Contains(t, err.Error(), file)
	require.False(t, testee.IsSet)
	require.Equal(t, Default(), cfg, "configuration must not change")
}
