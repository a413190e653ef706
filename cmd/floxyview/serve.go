package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rendis/floxyview/internal/logging"
	"github.com/rendis/floxyview/internal/panel"
	"github.com/rendis/floxyview/pkg/mcp"
	cli "github.com/urfave/cli/v3"
)

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve rendered flow documents over HTTP",
		Description: "Pages: / (example), POST /render, GET /files/<path>.json. " +
			"Send SIGHUP to reload settings.json and environment overrides.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "Listen address", Value: a.cfg.ListenAddr},
			&cli.StringFlag{Name: "root", Usage: "Directory served under /files/ (empty disables)", Value: a.cfg.Root},
			&cli.StringFlag{Name: "theme", Usage: "Default Mermaid theme", Value: a.cfg.Theme},
		},
		Action: a.runServe,
	}
}

// applyServeFlags layers explicitly set flags over cfg.
func applyServeFlags(cmd *cli.Command, cfg Config) Config {
	if cmd.IsSet("listen") {
		cfg.ListenAddr = cmd.String("listen")
	}
	if cmd.IsSet("root") {
		cfg.Root = cmd.String("root")
	}
	if cmd.IsSet("theme") {
		cfg.Theme = cmd.String("theme")
	}
	return cfg
}

func (a *app) panelHandler(cfg Config) http.Handler {
	return panel.NewPanelServer(panel.PanelDeps{
		Root:   cfg.Root,
		Theme:  cfg.Theme,
		Logger: a.logger,
	}).Handler()
}

func (a *app) runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := applyServeFlags(cmd, a.cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	swapper := newHandlerSwapper(a.panelHandler(cfg))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           swapper,
		ReadHeaderTimeout: 10 * time.Second,
	}

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.logger.InfoContext(ctx, "panel listening", "addr", cfg.ListenAddr, "root", cfg.Root, "theme", cfg.Theme)

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-reload:
			cfg = a.reload(ctx, cmd, cfg, swapper)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.logger.Info("panel shutting down")
			return srv.Shutdown(shutdownCtx)
		}
	}
}

// reload re-reads configuration and swaps in a new panel handler when
// anything it depends on changed. The listen address is kept.
func (a *app) reload(ctx context.Context, cmd *cli.Command, current Config, swapper *handlerSwapper) Config {
	loaded, err := a.loadConfig()
	if err != nil {
		a.logger.WarnContext(ctx, "settings rejected, keeping current", "error", err)
		return current
	}
	next := applyServeFlags(cmd, loaded)
	if cmd.IsSet("log-level") {
		next.LogLevel = current.LogLevel
	}
	if cmd.IsSet("log-format") {
		next.LogFormat = current.LogFormat
	}
	if err := next.Validate(); err != nil {
		a.logger.WarnContext(ctx, "settings rejected, keeping current", "error", err)
		return current
	}
	d := diffConfigs(current, next)

	if len(d.RestartNeeded) > 0 {
		a.logger.WarnContext(ctx, "settings need a restart to apply", "fields", d.RestartNeeded)
		next.ListenAddr = current.ListenAddr
	}
	if d.LoggerChanged {
		a.logger = logging.New(a.stderr, next.LogLevel, next.LogFormat)
	}
	if d.PanelChanged || d.LoggerChanged {
		swapper.Swap(a.panelHandler(next))
		a.logger.InfoContext(ctx, "panel reloaded", "root", next.Root, "theme", next.Theme)
	}
	return next
}

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the translator as MCP tools over stdio",
		Action: func(ctx context.Context, _ *cli.Command) error {
			ctx = logging.WithSource(ctx, "mcp")
			a.logger.InfoContext(ctx, "mcp server starting")
			return mcp.NewServer(mcp.ServerDeps{
				Version: version,
				Theme:   a.cfg.Theme,
				Logger:  a.logger,
			}).Serve(ctx)
		},
	}
}
