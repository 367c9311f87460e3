// Command cadence is the Optimization Core's CLI entrypoint: it builds
// the dependency container and hands control to the adapter/cli
// command tree.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wrenfield/cadence/adapter/cli"
	"github.com/wrenfield/cadence/internal/app"
	"github.com/wrenfield/cadence/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	cli.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	container, err := app.NewContainer(ctx)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("error closing container", "error", err)
		}
	}()

	cli.SetContainer(container)
	cli.Execute()
}
