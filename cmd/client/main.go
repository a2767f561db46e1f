package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aussiebroadwan/tokengate/internal/client"
	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

func main() {
	cfg := client.LoadConfig()

	logger := slogx.New(slogx.Config{
		Service: "tokengate-client",
		Level:   cfg.LogLevel,
		Format:  "text",
		Output:  os.Stderr,
	})

	opts := []authsdk.Option{
		authsdk.WithTimeout(cfg.Timeout),
		authsdk.WithPaths(cfg.Paths),
		authsdk.WithLogger(logger),
	}
	if cfg.InsecureTLS {
		opts = append(opts, authsdk.WithInsecureTLS())
	}

	menu := &client.Menu{
		Session: authsdk.NewClient(cfg.BaseURL, opts...).NewSession(),
		In:      os.Stdin,
		Out:     os.Stdout,
	}
	if !cfg.Interactive {
		logger.Info("running in non-interactive mode")
		menu.In = strings.NewReader(client.SimulatedInput)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := menu.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("client error: %v", err)
	}
}
