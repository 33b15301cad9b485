package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/api"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/workspace"
)

// =============================================================================
// SERVE COMMAND (API SERVER)
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the proposal API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "API server port",
				EnvVars: []string{"PROPOSALGEN_PORT"},
			},
			&cli.StringSliceFlag{
				Name:    "cors-origins",
				Usage:   "Allowed CORS origins (comma-separated)",
				EnvVars: []string{"PROPOSALGEN_CORS_ORIGINS"},
			},
			&cli.BoolFlag{
				Name:    "watch",
				Usage:   "Reload the catalog, rules and knowledge base when files change",
				EnvVars: []string{"PROPOSALGEN_WATCH"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	a, err := setup(c, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sc := a.cfg.Server
	if c.IsSet("port") {
		sc.Port = c.Int("port")
	}
	if c.IsSet("cors-origins") {
		sc.CORSOrigins = splitList(c.StringSlice("cors-origins"))
	}

	server := api.NewServer(a.generator, api.Config{
		Port:           sc.Port,
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		MaxRequestSize: sc.MaxRequestSize,
		CORSOrigins:    sc.CORSOrigins,
		DefaultTopK:    a.cfg.Defaults.TopK,
	}, a.logger)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	if c.Bool("watch") || sc.Watch {
		go func() {
			err := a.workspace.Watch(ctx, workspace.DefaultDebounce)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error().Err(err).Msg("File watcher stopped")
			}
		}()
	}

	return server.StartWithGracefulShutdown(ctx)
}
