package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FromFile loads the configuration file at the given path on top of the defaults.
func FromFile(path string) (Configuration, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	m := map[string]any{}

	err = yaml.Unmarshal(b, &m)
	if err != nil {
		return cfg, fmt.Errorf("read config at %s: %w", path, err)
	}

	// Durations are written as strings like 500ms within the file.
	for _, key := range []string{"reconnectDelay", "turnEndDelay"} {
		if s, ok := m[key].(string); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				return cfg, fmt.Errorf("read config at %s: %s: %w", path, key, err)
			}
			m[key] = int64(d)
		}
	}

	b, err = json.Marshal(m)
	if err != nil {
		return cfg, fmt.Errorf("load config: marshal config: %w", err)
	}

	d := json.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()

	err = d.Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("read config at %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration can be used to start a session.
func (c *Configuration) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("no server URL configured")
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}

	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("invalid channel count %d, expected 1 or 2", c.Channels)
	}

	if c.ReconnectDelay < 0 || c.TurnEndDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}

	if len([]rune(c.AgentSender)) != 5 {
		return fmt.Errorf("agent sender tag %q must have exactly 5 characters", c.AgentSender)
	}

	return nil
}
