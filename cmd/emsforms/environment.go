package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/internal/config"
	"github.com/goliatone/go-emsforms/internal/logging"
	"github.com/goliatone/go-emsforms/pkg/store"
	"github.com/goliatone/go-emsforms/pkg/store/memory"
	"github.com/goliatone/go-emsforms/pkg/store/rest"
	"github.com/goliatone/go-emsforms/pkg/store/sqlite"
	"github.com/goliatone/go-emsforms/pkg/templatefs"
	"github.com/goliatone/go-emsforms/pkg/validation"
)

// environment bundles what every command needs once configuration is loaded.
type environment struct {
	cfg       config.Config
	logger    *zap.Logger
	validator *validation.Validator
	templates store.TemplateStore
	employees store.EmployeeStore
	out       io.Writer

	closers []func() error
}

func openEnvironment(ctx context.Context, fs *flag.FlagSet, flags *config.Flags, out io.Writer) (*environment, error) {
	cfg, err := flags.Load(fs)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	env := &environment{
		cfg:       cfg,
		logger:    logger,
		validator: validation.New(validation.WithCheckboxRequired(cfg.Forms.EnforceCheckboxRequired)),
		out:       out,
	}
	env.closers = append(env.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	if err := env.openStores(ctx); err != nil {
		env.Close()
		return nil, err
	}
	if err := env.seed(ctx); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func (e *environment) openStores(ctx context.Context) error {
	logger := e.logger.Named("store")
	switch e.cfg.Store.Driver {
	case config.DriverMemory:
		backend := memory.New(memory.WithLogger(logger))
		e.templates, e.employees = backend.Templates(), backend.Employees()
	case config.DriverSQLite:
		backend, err := sqlite.OpenStore(ctx, e.cfg.Store.SQLitePath, sqlite.WithLogger(logger))
		if err != nil {
			return err
		}
		e.closers = append(e.closers, backend.Close)
		e.templates, e.employees = backend.Templates(), backend.Employees()
	case config.DriverREST:
		client, err := rest.New(
			e.cfg.API.BaseURL,
			store.StaticSession(e.cfg.API.Token),
			rest.WithTimeout(e.cfg.API.Timeout),
			rest.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		e.templates, e.employees = client.Templates(), client.Employees()
	default:
		return fmt.Errorf("unsupported store driver %q", e.cfg.Store.Driver)
	}
	e.logger.Debug("store ready", zap.String("driver", e.cfg.Store.Driver))
	return nil
}

func (e *environment) seed(ctx context.Context) error {
	dir := e.cfg.Templates.Dir
	if dir == "" {
		return nil
	}
	seeds, err := templatefs.LoadFS(os.DirFS(dir), ".")
	if err != nil {
		return err
	}
	_, err = templatefs.Seed(ctx, e.templates, seeds, e.logger.Named("seed"))
	return err
}

// Close releases resources in reverse order of acquisition.
func (e *environment) Close() {
	for idx := len(e.closers) - 1; idx >= 0; idx-- {
		if err := e.closers[idx](); err != nil {
			e.logger.Warn("close failed", zap.Error(err))
		}
	}
	e.closers = nil
}
