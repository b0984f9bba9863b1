package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/companion"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/location"
	"github.com/DhavalSuthar-24/huddle/routes"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 10 * time.Second
	locationMaxAge   = 30 * time.Minute
	locationPruneGap = 5 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the schema and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		return err
	}

	locations := location.NewRegistry(logger.Named("location"))
	hub := companion.NewHub(locations, cfg.Companion.SendBuffer, logger.Named("companion"))
	defer hub.Close()

	app := routes.SetupRoutes(routes.Deps{
		Config:    cfg,
		DB:        db,
		Logger:    logger,
		Locations: locations,
		Hub:       hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// in-flight companion snapshots finish before the hub closes
		app.Syncer.Wait()
		return err
	})
	g.Go(func() error {
		event.NewSweeper(app.Events, cfg.Sweep.Interval, logger.Named("sweeper")).Run(ctx)
		return nil
	})
	g.Go(func() error {
		locations.RunCleanup(ctx, locationPruneGap, locationMaxAge)
		return nil
	})
	return g.Wait()
}
