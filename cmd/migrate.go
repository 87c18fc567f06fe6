package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fintrek-backend/catalog"
	"fintrek-backend/config"
	"fintrek-backend/models"
)

func openDB() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Println("Database migrated")
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			return migrate(db)
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter learning catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			if err := migrate(db); err != nil {
				return err
			}
			if err := catalog.Seed(cmd.Context(), db); err != nil {
				return err
			}
			log.Println("Starter catalog loaded")
			return nil
		},
	}
}
