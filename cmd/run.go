package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilohertztli/Mathenique/internal/app"
	"github.com/kilohertztli/Mathenique/internal/auth"
	"github.com/kilohertztli/Mathenique/internal/catalog"
	"github.com/kilohertztli/Mathenique/internal/config"
	"github.com/kilohertztli/Mathenique/internal/progress"
	"github.com/kilohertztli/Mathenique/internal/remote"
	"github.com/kilohertztli/Mathenique/internal/screens/home"
	"github.com/kilohertztli/Mathenique/internal/session"
	"github.com/kilohertztli/Mathenique/internal/store"
)

// appEnv bundles the wired dependencies shared by the TUI and the
// one-shot subcommands.
type appEnv struct {
	cfg        *config.Config
	log        *slog.Logger
	store      *store.Store
	auth       *auth.Manager
	client     *remote.Client
	progress   *progress.Store
	controller *session.Controller
	closeLog   func()
}

// buildEnv opens the store and wires every service against it.
func buildEnv(cmd *cobra.Command) (*appEnv, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	// Logs go to a file next to the database; stderr belongs to the TUI.
	log, closeLog := newLogger(filepath.Join(filepath.Dir(dbPath), "mathenique.log"), cfg.Log.Level)

	st, err := store.Open(dbPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open store: %w", err)
	}

	authMgr := auth.NewManager(st, log)
	client := remote.NewClient(remote.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, authMgr)

	static, err := catalog.NewStatic()
	if err != nil {
		st.Close()
		closeLog()
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	source := &session.FallbackSource{
		Primary: remote.NewQuestionSource(client),
		Backup:  static,
		Gate:    authMgr.LoggedIn,
		Log:     log,
	}

	prog := progress.NewStore(remote.NewProgressBackend(client), st, log)

	// A rejected token means the saved session is dead: drop it so the
	// app runs logged out and the menu offers LOG IN again.
	forceLogout := func() {
		if authMgr.LoggedIn() {
			log.Warn("session token rejected by the backend, logging out")
			authMgr.Clear()
		}
	}
	source.OnAuthExpired = forceLogout
	prog.OnAuthExpired(forceLogout)

	return &appEnv{
		cfg:        cfg,
		log:        log,
		store:      st,
		auth:       authMgr,
		client:     client,
		progress:   prog,
		controller: session.New(source, prog),
		closeLog:   closeLog,
	}, nil
}

// close flushes pending progress writes and releases the store.
func (e *appEnv) close() {
	e.progress.Wait()
	e.store.Close()
	e.closeLog()
}

// load hydrates progress, tolerating an unreachable backend.
func (e *appEnv) load(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.progress.Load(ctx); err != nil {
		e.log.Warn("progress load incomplete", "error", err)
	}
}

// runApp wires dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	env, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	env.load(cmd.Context())

	return app.Run(home.Deps{
		Controller: env.controller,
		Progress:   env.progress,
		Auth:       env.auth,
		Login:      env.client,
		Log:        env.log,
		Version:    version,
	})
}

// newLogger opens a file-backed slog logger. On failure logging is
// silently discarded rather than breaking the app.
func newLogger(path, level string) (*slog.Logger, func()) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	return log, func() { f.Close() }
}
