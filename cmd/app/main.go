package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/tagnote/internal"
	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/mcpserver"
	"github.com/starford/tagnote/internal/notes"
	"github.com/starford/tagnote/internal/query"
	"github.com/starford/tagnote/internal/service"
	"github.com/starford/tagnote/internal/store"
	"github.com/starford/tagnote/internal/watch"
	pkgconfig "github.com/starford/tagnote/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// buildService constructs a service against the configured notes
// directory and store file. Each CLI invocation is a fresh
// load-mutate-save cycle over the store.
func buildService(cmd *cli.Command) (*service.Service, *notes.Dir, *internal.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	dir, err := notes.NewDir(cfg.Notes.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init notes dir: %w", err)
	}
	file := store.NewFile(cfg.Store.Path)
	return service.New(file, dir, cfg.Notes.UTC), dir, cfg, nil
}

func textLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func printLines(lines []string) {
	for _, l := range lines {
		fmt.Println(l)
	}
}

func runAdd(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("usage: add <name> [category...]")
	}
	svc, _, _, err := buildService(cmd)
	if err != nil {
		return err
	}
	created, err := svc.Add(args[0], args[1:])
	if err != nil {
		return err
	}
	printLines(created)
	return nil
}

func runMembers(ctx context.Context, cmd *cli.Command) error {
	svc, _, _, err := buildService(cmd)
	if err != nil {
		return err
	}
	members, err := svc.Members(cmd.Args().First())
	if err != nil {
		return err
	}
	printLines(members)
	return nil
}

func runCategories(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: categories <name>")
	}
	svc, _, _, err := buildService(cmd)
	if err != nil {
		return err
	}
	cats, err := svc.Categories(name)
	if err != nil {
		return err
	}
	printLines(cats)
	return nil
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	svc, _, _, err := buildService(cmd)
	if err != nil {
		return err
	}
	dir, err := query.ParseDirection(cmd.String("order"))
	if err != nil {
		return err
	}
	blocks, err := svc.Show(cmd.Args().Slice(), dir, cmd.String("search"))
	if err != nil {
		return err
	}
	fmt.Print(query.RenderBlocks(blocks))
	return nil
}

func runLast(ctx context.Context, cmd *cli.Command) error {
	svc, _, _, err := buildService(cmd)
	if err != nil {
		return err
	}
	b, err := svc.Last(cmd.Args().Slice())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("no notes for %q", strings.Join(cmd.Args().Slice(), " "))
		}
		return err
	}
	fmt.Print(b.Content)
	return nil
}

func runRemove(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("usage: remove <name> [category...]")
	}
	svc, _, _, err := buildService(cmd)
	if err != nil {
		return err
	}
	return svc.Remove(args[0], args[1:])
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("usage: import <file>...")
	}
	svc, _, _, err := buildService(cmd)
	if err != nil {
		return err
	}
	ids, err := svc.Import(paths, cmd.StringSlice("tag"))
	if err != nil {
		return err
	}
	printLines(ids)
	return nil
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	svc, _, cfg, err := buildService(cmd)
	if err != nil {
		return err
	}
	logger := textLogger(cfg)
	added, removed, err := svc.Sync(logger)
	if err != nil {
		return err
	}
	logger.Info("sync complete", slog.Int("added", added), slog.Int("removed", removed))
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	svc, dir, cfg, err := buildService(cmd)
	if err != nil {
		return err
	}
	logger := textLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("watching notes directory", slog.String("path", dir.Root()))
	return watch.Watch(ctx, svc, dir.Root(), logger, nil)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	svc, _, _, err := buildService(cmd)
	if err != nil {
		return err
	}
	return mcpserver.New(svc).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:  "tagnote",
		Usage: "Tag timestamped notes into a directed graph and query them by tag",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
				Persistent:  true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register a tag or note and file it under categories",
				ArgsUsage: "<name> [category...]",
				Action:    runAdd,
			},
			{
				Name:      "members",
				Usage:     "List direct members of a tag (no tag: top-level entities)",
				ArgsUsage: "[tag]",
				Action:    runMembers,
			},
			{
				Name:      "categories",
				Usage:     "List the tags an entity is directly filed under",
				ArgsUsage: "<name>",
				Action:    runCategories,
			},
			{
				Name:      "show",
				Usage:     "Print all notes reachable from the given tags",
				ArgsUsage: "[tag...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "order",
						Aliases: []string{"o"},
						Usage:   "ascending or descending (default descending)",
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Keep only notes containing this substring",
					},
				},
				Action: runShow,
			},
			{
				Name:      "last",
				Usage:     "Print the most recent note reachable from the given tags",
				ArgsUsage: "[tag...]",
				Action:    runLast,
			},
			{
				Name:      "remove",
				Usage:     "Remove category edges, or delete an unreferenced tag",
				ArgsUsage: "<name> [category...]",
				Action:    runRemove,
			},
			{
				Name:      "import",
				Usage:     "Copy foreign text files into the notes directory and register them",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Tags to file imported notes under (repeatable)",
					},
				},
				Action: runImport,
			},
			{
				Name:   "sync",
				Usage:  "Reconcile the store with the notes directory",
				Action: runSync,
			},
			{
				Name:   "watch",
				Usage:  "Watch the notes directory and register changes until interrupted",
				Action: runWatch,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with SSE note events",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP stdio server",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
