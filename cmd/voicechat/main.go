package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/mgoltzsche/voicechat/internal/audio"
	"github.com/mgoltzsche/voicechat/internal/cli"
	"github.com/mgoltzsche/voicechat/internal/metrics"
	"github.com/mgoltzsche/voicechat/internal/session"
	"github.com/mgoltzsche/voicechat/pkg/config"
)

func main() {
	configFile := "/etc/voicechat/config.yaml"
	cfg, err := config.FromFile(configFile)
	configFlag := &config.Flag{File: configFile, Config: &cfg}
	listDevices := false

	flag.Var(configFlag, "config", "Path to the configuration file")
	flag.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "URL of the voice stream websocket endpoint")
	flag.StringVar(&cfg.InputDevice, "input-device", cfg.InputDevice, "name or ID or the audio input device")
	flag.StringVar(&cfg.OutputDevice, "output-device", cfg.OutputDevice, "name or ID or the audio output device")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "sample rate of the recorded audio")
	flag.IntVar(&cfg.Channels, "channels", cfg.Channels, "number of recorded audio channels")
	flag.DurationVar(&cfg.ReconnectDelay, "reconnect-delay", cfg.ReconnectDelay, "delay before reconnecting after the connection closed")
	flag.DurationVar(&cfg.TurnEndDelay, "turn-end-delay", cfg.TurnEndDelay, "delay before recording is enabled again after the agent answered")
	flag.StringVar(&cfg.AgentSender, "agent-sender", cfg.AgentSender, "sender tag of the agent's messages")
	flag.BoolVar(&cfg.InsecureSkipVerify, "insecure-skip-verify", cfg.InsecureSkipVerify, "don't verify the server's TLS certificate")
	flag.StringVar(&cfg.MetricsAddress, "metrics-address", cfg.MetricsAddress, "address to serve prometheus metrics on, disabled when empty")
	flag.BoolVar(&listDevices, "list-devices", listDevices, "list the available audio devices and exit")
	cli.ParseFlagsWithEnvVars(flag.CommandLine, "VOICECHAT_")

	if !configFlag.IsSet && err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error(err.Error())
		os.Exit(1)
	}

	err = portaudio.Initialize()
	if err != nil {
		slog.Error(fmt.Sprintf("initialize portaudio: %s", err))
		os.Exit(1)
	}
	defer portaudio.Terminate()

	if listDevices {
		audio.ListDevices(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runClient(ctx, cfg)
	if err != nil {
		slog.Error(err.Error())
		portaudio.Terminate()
		os.Exit(1)
	}
}

func runClient(ctx context.Context, cfg config.Configuration) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)

	speaker := &audio.Speaker{Device: cfg.OutputDevice}

	sess, err := session.New(ctx, session.Options{
		Config: cfg,
		Microphone: &audio.Microphone{
			Device:     cfg.InputDevice,
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
		},
		Decoder: speaker,
		Player:  speaker,
		Output:  os.Stdout,
		Metrics: m,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	err = sess.Open(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := sess.Close(); err != nil {
			slog.Warn(err.Error())
		}
	}()

	eg.Go(func() error {
		defer cancel()
		return sess.Run(ctx, os.Stdin)
	})

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{
			Addr:              cfg.MetricsAddress,
			BaseContext:       func(net.Listener) context.Context { return ctx },
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		eg.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})

		eg.Go(func() error {
			slog.Info(fmt.Sprintf("serving metrics on %s", srv.Addr))

			err := srv.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("serve metrics: %w", err)
			}

			return nil
		})
	}

	return eg.Wait()
}
