package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rendis/floxyview/internal/logging"
	cli "github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "floxyview: %v\n", err)
		os.Exit(1)
	}

	a := newApp(os.Stdin, os.Stdout, os.Stderr, cfg)
	if err := a.command().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "floxyview: %v\n", err)
		os.Exit(1)
	}
}

// app carries the process-level collaborators shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    Config
	logger *slog.Logger

	loadConfig func() (Config, error)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, cfg Config) *app {
	return &app{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		cfg:        cfg,
		logger:     logging.New(stderr, cfg.LogLevel, cfg.LogFormat),
		loadConfig: loadConfig,
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "floxyview",
		Usage:     "Render Floxy flow JSON documents as Mermaid flowcharts",
		Version:   version,
		Reader:    a.stdin,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: a.cfg.LogLevel,
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json)",
				Value: a.cfg.LogFormat,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			a.cfg.LogLevel = cmd.String("log-level")
			a.cfg.LogFormat = cmd.String("log-format")
			if err := a.cfg.validateCommon(); err != nil {
				return ctx, err
			}
			a.logger = logging.New(a.stderr, a.cfg.LogLevel, a.cfg.LogFormat)
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.renderCommand(),
			a.exportCommand(),
			a.exampleCommand(),
			a.serveCommand(),
			a.mcpCommand(),
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(_ context.Context, _ *cli.Command) error {
					_, err := fmt.Fprintln(a.stdout, version)
					return err
				},
			},
		},
	}
}
