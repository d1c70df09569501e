package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/perthro/internal"
	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/mcpserver"
	"github.com/starford/perthro/internal/sectionservice"
	"github.com/starford/perthro/internal/session"
	"github.com/starford/perthro/internal/storage"
	pkgconfig "github.com/starford/perthro/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// runExtract parses a single annotated file and prints the selected
// sections as JSON. Without filters the whole document is printed.
// --pluck removes the selection from the in-memory document first, so
// repeating the same selection in one run yields nothing the second time.
func runExtract(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: perthro extract FILE")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	sess := session.New(string(data))
	list := cmd.String("list")
	name := cmd.String("name")

	var out any
	switch {
	case cmd.Bool("pluck"):
		switch {
		case list != "" && name != "":
			return fmt.Errorf("--pluck takes either --list or --name, not both")
		case list != "":
			out = sess.Pluck(session.KindList, list)
		case name != "":
			out = sess.Pluck(session.KindItem, name)
		default:
			return fmt.Errorf("--pluck requires --list or --name")
		}
	case list != "" && name != "":
		out = sess.ListItem(list, name)
	case list != "":
		out = sess.List(list)
	case name != "":
		sec, ok := sess.Item(name)
		if !ok {
			return fmt.Errorf("no section named %q in %s", name, path)
		}
		out = sec
	default:
		out = sess.Sections()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// runMCP starts the MCP server on stdio over the configured source tree.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Source.Path, cfg.Source.Extensions)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(sectionservice.NewService(store, db))
	return srv.ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "perthro",
		Usage: "Extract annotated sections from source trees, with an indexed HTTP API and MCP server",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with the SQLite index and file watcher",
				Action: runServe,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "extract",
				Usage:     "Parse one annotated file and print sections as JSON",
				ArgsUsage: "FILE",
				Action:    runExtract,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "list",
						Usage: "Select sections of this marker group",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Select the section with this name",
					},
					&cli.BoolFlag{
						Name:  "pluck",
						Usage: "Remove the selection from the document before printing",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
