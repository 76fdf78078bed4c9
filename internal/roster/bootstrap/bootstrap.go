// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/roster/internal/roster/conf"
	"github.com/go-arcade/roster/internal/roster/repo"
	"github.com/go-arcade/roster/internal/roster/service"
	"github.com/go-arcade/roster/internal/roster/sweeper"
	"github.com/go-arcade/roster/pkg/cron"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/log"
	"github.com/go-arcade/roster/pkg/metrics"
	"github.com/go-arcade/roster/pkg/trace"
	"github.com/go-arcade/roster/pkg/version"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	Conf      conf.AppConfig
	DB        database.IDatabase
	Services  *service.Services
	Sweeper   *sweeper.Sweeper
	Scheduler *cron.Scheduler
	Metrics   *metrics.Server
}

// InitAppFunc is the wire generated constructor of App.
type InitAppFunc func(loader *conf.Loader) (*App, func(), error)

// Bootstrap loads the configuration, installs the logger and the tracer, then builds the App.
func Bootstrap(configFile string, initApp InitAppFunc) (*App, *conf.Loader, func(), error) {
	loader, err := conf.Load(configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	appConf := loader.Config()

	if _, err := log.NewLog(&appConf.Log); err != nil {
		return nil, nil, nil, err
	}

	shutdownTrace, err := trace.Init(context.Background(), appConf.Trace)
	if err != nil {
		return nil, nil, nil, err
	}

	app, cleanupApp, err := initApp(loader)
	if err != nil {
		_ = shutdownTrace(context.Background())
		return nil, nil, nil, err
	}

	cleanup := func() {
		cleanupApp()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTrace(ctx); err != nil {
			log.Warnw("trace shutdown", "error", err)
		}
		_ = log.Sync()
	}
	log.Infow("roster bootstrapped",
		"version", version.GetVersion().String(),
		"config", loader.Path(),
		"database", appConf.Database.Type,
	)
	return app, loader, cleanup, nil
}

// Migrate creates or updates the roster tables.
func (a *App) Migrate(ctx context.Context) error {
	if err := repo.AutoMigrate(ctx, a.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Infow("database migrated", "type", a.Conf.Database.Type)
	return nil
}

// Serve runs the scheduler and the metrics listener until ctx is cancelled, then shuts
// them down. Configuration reloads adjust the invitation TTL of the running service.
func Serve(ctx context.Context, app *App, loader *conf.Loader) error {
	loader.OnChange(func(c conf.AppConfig) {
		ttl := c.Invitation.TTL
		app.Services.Invitation.SetTTL(ttl)
		log.Infow("invitation ttl reloaded", "ttl", app.Services.Invitation.TTL())
	})
	loader.Watch()

	if err := app.Metrics.Start(); err != nil {
		return err
	}
	app.Scheduler.Start()
	for _, e := range app.Scheduler.Entries(time.Now()) {
		log.Infow("cron job scheduled", "job", e.Name, "spec", e.Spec, "next", e.Next)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// catch up on rows that lapsed while no instance was running
		if !app.Conf.Sweeper.Enable {
			return nil
		}
		if err := app.Scheduler.Trigger(sweeper.JobName); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, cron.ErrStopped) {
			log.Warnw("initial invitation sweep failed", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		var errs []error
		if err := app.Scheduler.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
		if err := app.Metrics.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop metrics server: %w", err))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}
