package cli

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/amigo-insight/surveydash/cmd"
	"github.com/amigo-insight/surveydash/internal/config"
	"github.com/amigo-insight/surveydash/internal/repository"
	"github.com/amigo-insight/surveydash/internal/services"
)

var statsProjectFlag string

// StatsCmd represents the 'stats' command.
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Displays outcome statistics for a project.",
	Long: `This command shows a project's quota, its four outcome counters, the
ledger size and the per-vendor breakdown.

Example:
  surveydash stats --project=P1`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		if statsProjectFlag == "" {
			fmt.Println("Error: --project flag is required")
			os.Exit(1)
		}

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

		reporting := services.NewReportingService(
			repository.NewResponseRepository(db),
			repository.NewCountsRepository(db),
			repository.NewProjectRepository(db),
		)

		stats, err := reporting.GetProjectStats(statsProjectFlag)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load project stats")
		}

		fmt.Printf("Project: %s (%s)\n", stats.ProjectIdentifier, stats.Status)
		fmt.Printf("Quota: %d/%d completes\n", stats.Complete, stats.Counts)
		fmt.Printf("Terminate: %d  Quotafull: %d  SecurityTerminate: %d\n",
			stats.Terminate, stats.Quotafull, stats.SecurityTerminate)
		fmt.Printf("Total responses: %d\n", stats.TotalResponses)
		for _, vc := range stats.VendorCounts {
			fmt.Printf("  vendor %s: complete=%d terminate=%d quotafull=%d security=%d\n",
				vc.VendorUsername, vc.CompletedSurveys, vc.TerminatedSurveys,
				vc.QuotaFullSurveys, vc.SecurityTerminateSurveys)
		}
	},
}

func init() {
	StatsCmd.Flags().StringVar(&statsProjectFlag, "project", "", "Project identifier")
	StatsCmd.MarkFlagRequired("project")

	cmd.RootCmd.AddCommand(StatsCmd)
}
