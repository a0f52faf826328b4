// Package cli implements quarkctl, a terminal client for the QuarkfinAI API.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/quarkfin/platform-go/internal/config"
	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/client"
	"github.com/quarkfin/platform-go/internal/infra/identity"
	"github.com/quarkfin/platform-go/internal/infra/observability"
	"github.com/quarkfin/platform-go/internal/infra/resilience"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app is the state shared by every subcommand once the root Before ran.
type app struct {
	out    io.Writer
	api    *client.Client
	logger *zap.Logger
	json   bool
	poll   domain.PollOptions
}

// Run executes quarkctl with args, writing results to out.
func Run(ctx context.Context, args []string, out io.Writer, version string) error {
	var (
		a        = &app{out: out}
		apiURL   string
		token    string
		logLevel string
		noColor  bool
		timeout  time.Duration
		attempts int64
		interval time.Duration
	)

	cmd := &cli.Command{
		Name:    "quarkctl",
		Usage:   "QuarkfinAI risk assessment client",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "QuarkfinAI API origin",
				Value:       config.DevAPIURL,
				Sources:     cli.EnvVars("QUARK_API_URL"),
				Destination: &apiURL,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "bearer token sent with every request",
				Sources:     cli.EnvVars("QUARK_TOKEN"),
				Destination: &token,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "debug, info, warn or error",
				Value:       "warn",
				Sources:     cli.EnvVars("QUARK_LOG_LEVEL"),
				Destination: &logLevel,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "per-request timeout",
				Value:       client.DefaultTimeout,
				Destination: &timeout,
			},
			&cli.IntFlag{
				Name:        "poll-attempts",
				Usage:       "maximum status checks for poll commands",
				Value:       client.DefaultPollAttempts,
				Destination: &attempts,
			},
			&cli.DurationFlag{
				Name:        "poll-interval",
				Usage:       "wait between status checks",
				Value:       client.DefaultPollInterval,
				Destination: &interval,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print raw JSON instead of a summary",
				Destination: &a.json,
			},
			&cli.BoolFlag{
				Name:        "no-color",
				Usage:       "disable coloured output",
				Sources:     cli.EnvVars("NO_COLOR"),
				Destination: &noColor,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if noColor {
				color.NoColor = true
			}
			a.logger = observability.NewLogger(logLevel)
			a.api = client.New(client.Options{
				BaseURL:     apiURL,
				Timeout:     timeout,
				Retry:       resilience.NewPolicy(resilience.Config{}),
				TokenSource: identity.StaticTokenSource(token),
				Logger:      a.logger,
				Platform:    "QuarkfinAI-CLI",
			})
			a.poll = domain.PollOptions{MaxAttempts: int(attempts), Interval: interval}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if a.logger != nil {
				a.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			a.cmdHealth(),
			a.cmdAssess(),
			a.cmdBusinessRisk(),
			a.cmdAccount(),
		},
	}

	return cmd.Run(ctx, args)
}

func (a *app) cmdHealth() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check that the API is reachable",
		Action: func(ctx context.Context, c *cli.Command) error {
			ping, err := a.api.HealthCheck(ctx)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(ping)
			}
			a.printf("%s %s (%s)\n", ok.Sprint("API reachable:"), ping.Message, ping.Status)
			return nil
		},
	}
}
