package config

import (
	"time"
)

const (
	DefaultServerURL      = "ws://localhost:8000/voice_stream"
	DefaultReconnectDelay = time.Second
	DefaultTurnEndDelay   = 500 * time.Millisecond
	DefaultAgentSender    = "agent"
	DefaultSampleRate     = 16000
	DefaultFormat         = "audio/wav"
)

type Configuration struct {
	ServerURL          string        `json:"serverURL"`
	InputDevice        string        `json:"inputDevice,omitempty"`
	OutputDevice       string        `json:"outputDevice,omitempty"`
	SampleRate         int           `json:"sampleRate,omitempty"`
	Channels           int           `json:"channels,omitempty"`
	RecordingFormat    string        `json:"recordingFormat,omitempty"`
	ReconnectDelay     time.Duration `json:"reconnectDelay,omitempty"`
	TurnEndDelay       time.Duration `json:"turnEndDelay,omitempty"`
	AgentSender        string        `json:"agentSender,omitempty"`
	InsecureSkipVerify bool          `json:"insecureSkipVerify,omitempty"`
	MetricsAddress     string        `json:"metricsAddress,omitempty"`
}

// Default returns the configuration used when no config file is present.
func Default() Configuration {
	return Configuration{
		ServerURL:       DefaultServerURL,
		SampleRate:      DefaultSampleRate,
		Channels:        1,
		RecordingFormat: DefaultFormat,
		ReconnectDelay:  DefaultReconnectDelay,
		TurnEndDelay:    DefaultTurnEndDelay,
		AgentSender:     DefaultAgentSender,
	}
}
