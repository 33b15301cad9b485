// ProposalGen CLI - Sales Proposal Generator
//
// Usage:
//
//	proposalgen generate --customer acme.yaml --must-have analytics
//	proposalgen quote --item AN-100:2 --discount 15
//	proposalgen serve --port 8080 --watch
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/config"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/clickhouse"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/filestore"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/postgres"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/s3"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/session"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/compliance"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/planner"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/policy"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/proposal"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/workspace"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "proposalgen",
		Usage:   "Sales Proposal Generator - shortlist, price and draft compliant proposals",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"PROPOSALGEN_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "console",
				Usage:   "Log format (console, json)",
				EnvVars: []string{"PROPOSALGEN_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to config file (default: " + config.DefaultFile + " if present)",
				EnvVars: []string{"PROPOSALGEN_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Product catalog CSV",
				EnvVars: []string{"PROPOSALGEN_CATALOG"},
			},
			&cli.StringFlag{
				Name:    "pricing-rules",
				Usage:   "Pricing rules file (JSON or YAML)",
				EnvVars: []string{"PROPOSALGEN_PRICING_RULES"},
			},
			&cli.StringFlag{
				Name:    "kb-dir",
				Usage:   "Knowledge base directory",
				EnvVars: []string{"PROPOSALGEN_KB_DIR"},
			},
			&cli.StringFlag{
				Name:    "kb-pattern",
				Usage:   "Glob for knowledge base files",
				EnvVars: []string{"PROPOSALGEN_KB_PATTERN"},
			},
			&cli.StringFlag{
				Name:    "out-dir",
				Usage:   "Output directory for documents and file sessions",
				EnvVars: []string{"PROPOSALGEN_OUT_DIR"},
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Session store backend (file, postgres, clickhouse, s3)",
				EnvVars: []string{"PROPOSALGEN_STORE"},
			},
		},

		Commands: []*cli.Command{
			generateCommand(),
			serveCommand(),
			catalogCommand(),
			searchCommand(),
			quoteCommand(),
			complianceCommand(),
			sessionsCommand(),
		},
	}
}

// =============================================================================
// SETUP
// =============================================================================

// loadConfig resolves defaults < config file < global flags and env.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"catalog", &cfg.Data.Catalog},
		{"pricing-rules", &cfg.Data.PricingRules},
		{"kb-dir", &cfg.Data.KnowledgeDir},
		{"kb-pattern", &cfg.Data.KnowledgePattern},
		{"out-dir", &cfg.Data.OutDir},
		{"store", &cfg.Store.Backend},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.target = c.String(o.flag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(c *cli.Context) zerolog.Logger {
	return platform.InitLogger(c.String("log-level"), c.String("log-format"))
}

func sources(cfg *config.Config) workspace.Sources {
	return workspace.Sources{
		Catalog:          cfg.Data.Catalog,
		PricingRules:     cfg.Data.PricingRules,
		KnowledgeDir:     cfg.Data.KnowledgeDir,
		KnowledgePattern: cfg.Data.KnowledgePattern,
		CacheSize:        cfg.Server.CacheSize,
	}
}

// openStore connects the configured session backend.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.Store.Postgres.DSN)
	case config.BackendClickHouse:
		ch := cfg.Store.ClickHouse
		return clickhouse.NewStore(ctx, &clickhouse.Config{
			Host:     ch.Host,
			Port:     ch.Port,
			Database: ch.Database,
			Username: ch.Username,
			Password: ch.Password,
			Debug:    ch.Debug,
		})
	case config.BackendS3:
		return s3.New(ctx, s3.Config{
			Bucket:   cfg.Store.S3.Bucket,
			Prefix:   cfg.Store.S3.Prefix,
			Region:   cfg.Store.S3.Region,
			Endpoint: cfg.Store.S3.Endpoint,
		})
	default:
		return filestore.New(cfg.Data.OutDir, logger)
	}
}

// app bundles what most commands need.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	workspace *workspace.Holder
	store     session.Store
	generator *proposal.Generator
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close session store")
		}
	}
}

// setup loads config and data. The session store is opened only when
// withStore is set.
func setup(c *cli.Context, withStore bool) (*app, error) {
	logger := newLogger(c)
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.NewHolder(sources(cfg), logger)
	if err != nil {
		return nil, err
	}
	snap := ws.Current()
	logger.Debug().
		Int("products", snap.Catalog.Len()).
		Int("documents", snap.Index.Len()).
		Str("catalog_hash", snap.Catalog.Hash()).
		Msg("Loaded workspace")

	strategy, err := planner.ForName(cfg.Defaults.Strategy)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, workspace: ws}
	if withStore {
		a.store, err = openStore(c.Context, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s session store: %w", cfg.Store.Backend, err)
		}
	}

	a.generator = proposal.NewGenerator(ws, proposal.Options{
		Strategy: strategy,
		Checker:  compliance.NewChecker(cfg.Compliance.ExtraBannedPhrases...),
		Policies: policy.NewEngine(),
		Store:    a.store,
		Defaults: &proposal.Defaults{
			Currency:    cfg.Defaults.Currency,
			DiscountPct: decimal.NewFromFloat(cfg.Defaults.DiscountPct),
			TopK:        cfg.Defaults.TopK,
		},
		Logger: logger,
	})
	return a, nil
}
