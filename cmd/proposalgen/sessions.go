package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/filestore"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/session"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/compliance"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/render"
)

// =============================================================================
// COMPLIANCE COMMAND
// =============================================================================

func complianceCommand() *cli.Command {
	return &cli.Command{
		Name:  "compliance",
		Usage: "Check text for banned claims",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Scan a file (or stdin) for banned phrases",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "extra", Usage: "Additional banned phrase (repeatable)"},
				},
				Action: func(c *cli.Context) error {
					var (
						data []byte
						err  error
					)
					if path := c.Args().First(); path != "" && path != "-" {
						data, err = os.ReadFile(path)
					} else {
						data, err = io.ReadAll(os.Stdin)
					}
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}

					claims := compliance.NewChecker(c.StringSlice("extra")...).CheckClaims(string(data))
					if len(claims) == 0 {
						fmt.Println("✅ No banned claims found")
						return nil
					}
					for _, p := range claims {
						fmt.Printf("❌ %s\n", p)
					}
					return cli.Exit("", 2)
				},
			},
			{
				Name:  "clauses",
				Usage: "Print the mandatory terms",
				Action: func(c *cli.Context) error {
					for _, clause := range compliance.MandatoryClauses() {
						fmt.Printf("- %s\n", clause)
					}
					return nil
				},
			},
		},
	}
}

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

func sessionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Browse saved proposals",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved sessions, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum sessions to show (0 for all)"},
					jsonFlag(),
				},
				Action: func(c *cli.Context) error {
					a, err := setup(c, true)
					if err != nil {
						return err
					}
					defer a.Close()

					list, err := a.store.List(c.Context, c.Int("limit"))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return writeJSON(list)
					}
					fmt.Printf("%-26s  %-20s  %-24s  %s\n", "ID", "CREATED", "COMPANY", "TOTAL")
					for _, s := range list {
						fmt.Printf("%-26s  %-20s  %-24s  %s %s\n",
							s.ID, s.CreatedAt.Local().Format(time.DateTime), truncate(s.Company, 24), s.Currency, s.Total.StringFixed(2))
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "Print or export a saved session",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   render.FormatMarkdown,
						Usage:   "Document format (markdown, docx, pdf)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to file instead of stdout",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: proposalgen sessions show ID", 1)
					}
					a, err := setup(c, true)
					if err != nil {
						return err
					}
					defer a.Close()

					data, r, err := a.generator.Document(c.Context, c.Args().First(), c.String("format"))
					if err != nil {
						return err
					}
					if out := c.String("output"); out != "" {
						if err := os.WriteFile(out, data, 0o644); err != nil {
							return fmt.Errorf("failed to write %s: %w", out, err)
						}
						fmt.Fprintf(os.Stderr, "📄 Wrote %s (%s)\n", out, r.ContentType())
						return nil
					}
					_, err = os.Stdout.Write(data)
					return err
				},
			},
			{
				Name:  "migrate",
				Usage: "Copy sessions from a local directory into the configured store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "from",
						Usage:    "Directory holding file-store sessions",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					a, err := setup(c, true)
					if err != nil {
						return err
					}
					defer a.Close()

					src, err := filestore.New(c.String("from"), a.logger)
					if err != nil {
						return err
					}
					n, err := session.Copy(c.Context, a.store, src)
					if err != nil {
						return err
					}
					fmt.Printf("✅ Copied %d session(s) to %s\n", n, a.cfg.Store.Backend)
					return nil
				},
			},
		},
	}
}
