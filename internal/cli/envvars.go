package cli

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ParseFlagsWithEnvVars parses the command line arguments.
// Every flag can also be set using an environment variable named after the flag with the given prefix.
// The process exits when invalid flags or unknown prefixed environment variables are provided.
func ParseFlagsWithEnvVars(flags *flag.FlagSet, envVarPrefix string) {
	err := parseFlags(flags, envVarPrefix, os.Args[1:], os.Environ())
	if err != nil {
		flags.Usage()
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func parseFlags(flags *flag.FlagSet, envVarPrefix string, args, environ []string) error {
	addLogLevelFlag(flags)

	env := map[string]string{}
	for _, entry := range environ {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) == 2 {
			env[kv[0]] = kv[1]
		}
	}

	var err error

	supportedEnvVars := map[string]struct{}{}
	flags.VisitAll(func(f *flag.Flag) {
		envVarName := envVarPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		f.Usage = fmt.Sprintf("%s (%s)", f.Usage, envVarName)
		supportedEnvVars[envVarName] = struct{}{}
		if envVarValue := env[envVarName]; envVarValue != "" && err == nil {
			f.DefValue = envVarValue
			if e := f.Value.Set(envVarValue); e != nil {
				err = fmt.Errorf("invalid environment variable %s value provided: %w", envVarName, e)
			}
		}
	})
	if err != nil {
		return err
	}

	err = flags.Parse(args)
	if err != nil {
		return err
	}

	for name := range env {
		if strings.HasPrefix(name, envVarPrefix) {
			if _, ok := supportedEnvVars[name]; !ok {
				return fmt.Errorf("unsupported environment variable provided: %s", name)
			}
		}
	}

	return nil
}
