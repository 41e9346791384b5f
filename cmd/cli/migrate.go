package cli

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/amigo-insight/surveydash/cmd"
	"github.com/amigo-insight/surveydash/internal/config"
	"github.com/amigo-insight/surveydash/internal/models"
)

// MigrateCmd represents the 'migrate' command.
// This command handles database schema creation and updates.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database (SQLite)
and executes GORM automatic migrations to create the projects, vendors,
survey responses, counters, clients and request log tables based on the Go models.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load configuration")
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{TranslateError: true})
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to database")
		}

		sqlDB, err := db.DB()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to get underlying SQL database")
		}
		defer sqlDB.Close()

		if err := db.AutoMigrate(
			&models.Project{},
			&models.CountryLink{},
			&models.Vendor{},
			&models.SurveyResponse{},
			&models.ProjectVendorCounts{},
			&models.Client{},
			&models.RequestLog{},
		); err != nil {
			logrus.WithError(err).Fatal("Failed to migrate database")
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
