package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jask/tablebrowser/internal/config"
	"github.com/jask/tablebrowser/internal/database"
	"github.com/jask/tablebrowser/internal/database/repository"
	"github.com/jask/tablebrowser/internal/logging"
	"github.com/jask/tablebrowser/internal/service"
	"github.com/jask/tablebrowser/internal/viewstate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is everything a command needs once configuration is loaded and the
// state database is migrated.
type env struct {
	cfg      config.Config
	log      zerolog.Logger
	db       *sql.DB
	repo     *repository.ViewStateRepo
	registry *viewstate.Registry
	state    *service.StateService
	closers  []io.Closer
}

// setup loads config and opens the state database. logPath overrides the
// configured log destination; "-" means stderr.
func setup(logPath string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if logPath == "" {
		logPath = cfg.Log.Path
	} else if logPath == "-" {
		logPath = ""
	}
	log, closer, err := logging.New(cfg.Log.Level, logPath)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, closers: []io.Closer{closer}}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		e.Close()
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		e.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	e.db = db
	e.closers = append(e.closers, db)

	e.repo = repository.NewViewStateRepo(db)
	e.registry = viewstate.New(viewstate.WithLogger(log), viewstate.WithDefaults(cfg.Defaults()))
	e.state = &service.StateService{Registry: e.registry, Repo: e.repo, Log: log}
	log.Debug().Str("db", cfg.Database.Path).Str("session", e.registry.Session()).Msg("state database ready")
	return e, nil
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}
