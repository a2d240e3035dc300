package cmd

import (
	"context"

	"melodex/config"
	"melodex/core/catalog"
	"melodex/db"
	"melodex/logger"
	"melodex/repository"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled catalog dataset into the database",
	Long:  `Load the seed track dataset. Safe to re-run: tracks are inserted at most once per title.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogPath,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})

		conn, err := db.Connect(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", logger.ErrorField(err))
		}
		defer conn.Close()

		driver, _ := db.DSN(cfg)
		if err := db.Init(conn, driver); err != nil {
			logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
		}

		seeder := catalog.NewSeeder(repository.NewCatalogRepository(conn), cfg.SeedDataPath)
		count := seeder.Seed(context.Background())
		logger.Info("Seeding complete", logger.Int("inserted", count))
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
