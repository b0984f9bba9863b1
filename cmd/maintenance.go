package cmd

import (
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/auth"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/participation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired events and spent refresh tokens once, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		events := event.NewEventRepository(db, cfg.Participation.MaxAttempts, cfg.Events.DefaultExpiry)
		removed, err := events.SweepExpired(ctx)
		if err != nil {
			return err
		}
		tokens, err := auth.NewAuthRepository(db).DeleteExpiredRefreshTokens(ctx, time.Now())
		if err != nil {
			return err
		}
		logger.Info("sweep finished", zap.Int("events_removed", removed), zap.Int64("refresh_tokens_removed", tokens))
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair membership links between events and users",
	Long: `Scans every event and user and makes each user's joined-event list agree with
event participant lists, dropping participants that no longer exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		engine := participation.NewEngine(participation.NewGormStore(db, cfg.Participation.MaxAttempts), nil, logger)
		_, err = engine.Reconcile(cmd.Context())
		return err
	},
}
