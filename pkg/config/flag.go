package config

import (
	"flag"
	"fmt"
)

var _ flag.Value = &Flag{}

// Flag loads the voicechat configuration file given on the command line.
// The file replaces the whole configuration, so it must precede other flags.
type Flag struct {
	File   string
	Config *Configuration
	IsSet  bool
}

func (f *Flag) Set(path string) error {
	f.File = path

	cfg, err := FromFile(path)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	*f.Config = cfg
	f.IsSet = true

	return nil
}

func (f *Flag) String() string {
	if f == nil {
		return ""
	}

	return f.File
}
