package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mgoltzsche/voicechat/internal/cli"
	"github.com/mgoltzsche/voicechat/internal/loopback"
	"github.com/mgoltzsche/voicechat/internal/tlsutils"
)

func main() {
	listenAddr := ":8000"
	sampleRate := 16000
	tlsEnabled := false
	tlsCert := ""
	tlsKey := ""

	flag.StringVar(&listenAddr, "listen", listenAddr, "Address the server should listen on")
	flag.IntVar(&sampleRate, "sample-rate", sampleRate, "Sample rate of the generated reply tones")
	flag.BoolVar(&tlsEnabled, "tls", tlsEnabled, "Serve securely via HTTPS/TLS")
	flag.StringVar(&tlsKey, "tls-key", tlsKey, "Path to the TLS key file")
	flag.StringVar(&tlsCert, "tls-cert", tlsCert, "Path to the TLS certificate file")
	cli.ParseFlagsWithEnvVars(flag.CommandLine, "VOICECHAT_LOOPBACK_")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := runServer(ctx, listenAddr, sampleRate, tlsEnabled, tlsCert, tlsKey)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func runServer(ctx context.Context, listenAddr string, sampleRate int, tlsEnabled bool, tlsCert, tlsKey string) error {
	peer := loopback.NewServer(sampleRate)
	mux := http.NewServeMux()
	srv := &http.Server{
		Addr:        listenAddr,
		BaseContext: func(net.Listener) context.Context { return ctx },
		Handler:     mux,
	}

	peer.AddRoutes(mux)

	go func() {
		<-ctx.Done()
		slog.Info("terminating")
		peer.Close()
		srv.Shutdown(context.Background())
	}()

	var err error

	if tlsEnabled {
		if tlsCert == "" && tlsKey == "" {
			slog.Info("generating self-signed TLS certificate")

			var cleanup func()

			tlsCert, tlsKey, cleanup, err = tlsutils.GenerateSelfSignedTLSCertificate()
			if err != nil {
				return fmt.Errorf("generating tls certificate: %w", err)
			}

			defer cleanup()
		}

		slog.Info(fmt.Sprintf("listening on %s, serving wss://localhost%s%s", srv.Addr, srv.Addr, loopback.Path))

		err = srv.ListenAndServeTLS(tlsCert, tlsKey)
	} else {
		slog.Info(fmt.Sprintf("listening on %s, serving ws://localhost%s%s", srv.Addr, srv.Addr, loopback.Path))

		err = srv.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}
