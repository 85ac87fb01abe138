// Package main is the entry point for the sprite editor CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jwulff/sprite-go/internal/config"
	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/logging"
	"github.com/jwulff/sprite-go/internal/storage"
	"github.com/jwulff/sprite-go/internal/storage/sqlite"
)

// EnvConfig names the YAML config file.
const EnvConfig = "SPRITE_CONFIG"

// app carries what every command needs.
type app struct {
	cfg   *config.Config
	store storage.Store
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"new":     {"new <name> [WxH]", "Create an empty project", cmdNew},
	"demo":    {"demo", "Create a small animated demo project", cmdDemo},
	"list":    {"list", "List stored projects", cmdList},
	"info":    {"info <project>", "Show layers and frames of a project", cmdInfo},
	"delete":  {"delete <project>", "Delete a project", cmdDelete},
	"paint":   {"paint <project> <layer> <tool> <size> <color> <x,y>...", "Apply a tool along a stroke", cmdPaint},
	"select":  {"select <project> <x,y>... [--size N]", "Select brush squares and report the selection", cmdSelect},
	"bounds":  {"bounds <project>", "Detect non-transparent bounds per layer and frame", cmdBounds},
	"preview": {"preview <project> [frame]", "Show ASCII preview of a frame", cmdPreview},
	"play":    {"play <project>", "Play the animation as ASCII in the terminal", cmdPlay},
	"push":    {"push <project> [IP]", "Send the animation to a Pixoo", cmdPush},
	"devices": {"devices [scan]", "List stored Pixoo devices or scan the network", cmdDevices},
}

var commandOrder = []string{"new", "demo", "list", "info", "delete", "paint", "select", "bounds", "preview", "play", "push", "devices"}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		return
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		showUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv(EnvConfig))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))

	store, err := openStore(cfg.Storage.Path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, &app{cfg: cfg, store: store}, os.Args[2:]); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Printf("Usage: sprite %s\n", cmd.usage)
		store.Close()
		os.Exit(1)
	}
}

func openStore(path string) (storage.Store, error) {
	if path == ":memory:" {
		return sqlite.NewMemoryStore()
	}
	return sqlite.NewFileStore(path)
}

func showUsage() {
	fmt.Println("Sprite - pixel sprite editor core")
	fmt.Println()
	fmt.Println("Usage:")
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Printf("  sprite %-52s - %s\n", c.usage, c.help)
	}
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %-18s - YAML config file (optional)\n", EnvConfig)
	fmt.Printf("  %-18s - Project database path (default %s)\n", config.EnvDatabase, config.DefaultDatabase)
	fmt.Printf("  %-18s - Pixoo IP address for push\n", config.EnvPixooIP)
	fmt.Printf("  %-18s - debug, info, warn or error\n", config.EnvLogLevel)
}

// resolveProject loads a project by ID or unique ID prefix.
func (a *app) resolveProject(ctx context.Context, ref string) (*domain.Project, error) {
	p, err := a.store.GetProject(ctx, ref)
	if err == nil || !storage.IsNotFound(err) {
		return p, err
	}

	list, err := a.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	var match string
	for _, ps := range list {
		if strings.HasPrefix(ps.ID, ref) {
			if match != "" {
				return nil, fmt.Errorf("project reference %q is ambiguous", ref)
			}
			match = ps.ID
		}
	}
	if match == "" {
		return nil, storage.ErrNotFound{Resource: "project", ID: ref}
	}
	return a.store.GetProject(ctx, match)
}

func requireArgs(args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("expected at least %d argument(s), got %d", n, len(args))
	}
	return nil
}
