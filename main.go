// statbars runs the bar demo in the local terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"statbars/internal/config"
	"statbars/internal/game"
	"statbars/internal/savedata"

	"github.com/gdamore/tcell/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := "config/statbars.yaml"
	if p := os.Getenv("STATBARS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The terminal belongs to the game: logs go to stderr, warnings and up.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: max(cfg.SlogLevel(), slog.LevelWarn),
	})))

	var store *savedata.Store
	if cfg.SaveDB != "" {
		if store, err = savedata.Open(cfg.SaveDB); err != nil {
			return fmt.Errorf("opening save db: %w", err)
		}
		defer store.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	name := "player"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}

	g, err := game.New(ctx, screen, game.Options{Config: cfg, Store: store, Name: name})
	if err != nil {
		return err
	}
	return g.Run(ctx)
}
