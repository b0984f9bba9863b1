package cmd

import (
	"fmt"

	"github.com/DhavalSuthar-24/huddle/config"
	"github.com/DhavalSuthar-24/huddle/internal/auth"
	"github.com/DhavalSuthar-24/huddle/internal/chat"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/rewards"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		return migrate(db)
	},
}

func schema() []interface{} {
	models := []interface{}{
		&user.User{},
		&auth.RefreshToken{},
		&event.Event{},
		&rewards.TokenTransaction{},
	}
	return append(models, chat.Models()...)
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(schema()...); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	logger.Info("AutoMigrate successful")
	return nil
}

func openDB() (*gorm.DB, error) {
	db, err := config.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}
