package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/quarkfin/platform-go/internal/cli"
	"github.com/quarkfin/platform-go/internal/config"
	"github.com/quarkfin/platform-go/internal/domain"

	"github.com/fatih/color"
)

var version = "dev"

func main() {
	_ = config.LoadDotEnv(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args, os.Stdout, version); err != nil {
		red := color.New(color.FgRed, color.Bold)
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			red.Fprintf(os.Stderr, "error: %s ", apiErr.Message)
			color.New(color.Faint).Fprintf(os.Stderr, "[%s]\n", apiErr.Code)
		} else {
			red.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
