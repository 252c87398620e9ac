// statbars-server serves the statbars demo over SSH: every connection gets
// its own player, training dummy and animated bars. Build:
//
//	go build -o statbars-server ./cmd/server
//
// Usage:
//
//	STATBARS_CONFIG=config/statbars.yaml ./statbars-server
//
// Connect with:
//
//	ssh -t -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"statbars/internal/config"
	"statbars/internal/feed"
	"statbars/internal/game"
	"statbars/internal/savedata"
	internalssh "statbars/internal/ssh"

	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"
)

const (
	DefaultConfigPath = "config/statbars.yaml"
	maxNameBytes      = 16
	shutdownTimeout   = 5 * time.Second
)

// allowedTerms lists the terminal types sessions may announce. Anything
// else is refused before terminfo is consulted.
var allowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"vt220":                 true,
	"rxvt-unicode":          true,
	"rxvt-unicode-256color": true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := DefaultConfigPath
	if p := os.Getenv("STATBARS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.Info("statbars server starting", "config", cfgPath, "log_level", cfg.SlogLevel())

	var store *savedata.Store
	if cfg.SaveDB != "" {
		var saved []string
		store, saved, err = openStore(ctx, cfg.SaveDB)
		if err != nil {
			return err
		}
		defer store.Close()
		slog.Info("save db opened", "path", cfg.SaveDB, "saved_actors", len(saved))
	}

	signer, err := loadOrCreateHostKey(cfg.SSH.HostKey)
	if err != nil {
		return fmt.Errorf("host key: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	var hub *feed.Hub
	if cfg.Feed.Addr != "" {
		hub = feed.NewHub(slog.Default())
		httpSrv := &http.Server{Addr: cfg.Feed.Addr, Handler: hub, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			hub.Run(gctx)
			return nil
		})
		g.Go(func() error {
			slog.Info("starting bar feed", "addr", cfg.Feed.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("bar feed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutCtx)
		})
	}

	sshSrv := &gossh.Server{
		Addr: fmt.Sprintf(":%d", cfg.SSH.Port),
		Handler: func(s gossh.Session) {
			handleSession(gctx, s, cfg, store, hub)
		},
		// Accept PTY requests from any client.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// Accept any authentication: this is a demo server.
		HostSigners: []gossh.Signer{signer},
	}
	g.Go(func() error {
		slog.Info("starting ssh server", "port", cfg.SSH.Port)
		if err := sshSrv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sshSrv.Shutdown(shutCtx); err != nil {
			slog.Warn("ssh shutdown", "err", err)
			return sshSrv.Close()
		}
		return nil
	})

	return g.Wait()
}

// handleSession is the gliderlabs SSH handler for one connection. It blocks
// for the duration of the game so the SSH session stays open.
func handleSession(ctx context.Context, s gossh.Session, cfg config.Config, store *savedata.Store, hub *feed.Hub) {
	name := sanitizeName(s.User())
	if name == "" {
		name = "player"
	}
	logger := slog.Default().With("remote", s.RemoteAddr().String(), "user", name)

	tty, err := internalssh.NewTty(s)
	if err != nil {
		fmt.Fprintln(s, "statbars needs a PTY. Connect with: ssh -t -p", cfg.SSH.Port, "<host>")
		return
	}
	if !allowedTerms[tty.Term()] {
		logger.Warn("terminal refused", "term", tty.Term())
		fmt.Fprintf(s, "Unsupported terminal %q. Try TERM=xterm-256color.\n", tty.Term())
		return
	}

	screen, err := internalssh.NewScreen(tty)
	if err != nil {
		logger.Warn("terminal setup failed", "err", err)
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.Context().Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	sess, err := game.New(ctx, screen, game.Options{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Hub:    hub,
		Name:   name,
	})
	if err != nil {
		logger.Error("session setup failed", "err", err)
		return
	}
	logger.Info("session started", "term", tty.Term())
	if err := sess.Run(ctx); err != nil {
		logger.Warn("session ended with error", "err", err)
	}
}

// sanitizeName keeps the printable runes of a username, cut to at most
// maxNameBytes bytes without splitting a rune.
func sanitizeName(s string) string {
	out := make([]byte, 0, maxNameBytes)
	for _, r := range s {
		if r == utf8.RuneError || !unicode.IsPrint(r) {
			continue
		}
		if len(out)+utf8.RuneLen(r) > maxNameBytes {
			break
		}
		out = utf8.AppendRune(out, r)
	}
	return string(out)
}

// openStore opens the save db and lists the actors it already holds.
func openStore(ctx context.Context, path string) (*savedata.Store, []string, error) {
	store, err := savedata.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening save db: %w", err)
	}
	actors, err := store.Actors(ctx)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("reading save db: %w", err)
	}
	return store, actors, nil
}

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			slog.Info("loaded host key", "path", path)
			return signer, nil
		}
	}

	slog.Info("generating new ed25519 host key", "path", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	pemBlock, err := xssh.MarshalPrivateKey(key, "statbars server")
	if err != nil {
		slog.Warn("host key not persisted", "err", err)
		return signer, nil
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(pemBlock), 0o600); err != nil {
		slog.Warn("host key not persisted", "path", path, "err", err)
	}
	return signer, nil
}
