package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/amigo-insight/surveydash/cmd"
	"github.com/amigo-insight/surveydash/internal/config"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
	"github.com/amigo-insight/surveydash/internal/services"
)

var (
	projectIdentifierFlag string
	projectCountsFlag     int64
	projectClientIDFlag   uint
	projectLinksFlag      []string
)

// CreateProjectCmd represents the 'create-project' command.
var CreateProjectCmd = &cobra.Command{
	Use:   "create-project",
	Short: "Creates a survey project with its country links.",
	Long: `This command creates a project with a freshly minted click token and
prints the token to embed in vendor links.

Example:
  surveydash create-project --identifier=P1 --counts=100 \
    --link="US=https://surveys.example.com/s1?uid=[UID]" \
    --link="IN=https://surveys.example.com/s1-in?uid=[UID]"`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		if projectIdentifierFlag == "" {
			fmt.Println("Error: --identifier flag is required")
			os.Exit(1)
		}

		// Each --link is "COUNTRY=url", validated before touching the database.
		var links []models.CountryLink
		for _, raw := range projectLinksFlag {
			country, link, found := strings.Cut(raw, "=")
			if !found || country == "" || link == "" {
				fmt.Printf("Error: invalid --link value %q, expected COUNTRY=url\n", raw)
				os.Exit(1)
			}
			links = append(links, models.CountryLink{Country: country, OriginalLink: link})
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

		projectService := services.NewProjectService(
			repository.NewProjectRepository(db),
			repository.NewVendorRepository(db),
			repository.NewClientRepository(db),
		)

		project, err := projectService.CreateProject(services.CreateProjectInput{
			ProjectIdentifier: projectIdentifierFlag,
			ClientID:          projectClientIDFlag,
			Counts:            projectCountsFlag,
			CountryLinks:      links,
		})
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create project")
		}

		fmt.Printf("Project created successfully:\n")
		fmt.Printf("Identifier: %s\n", project.ProjectIdentifier)
		fmt.Printf("Click token: %s\n", project.Token)
		fmt.Printf("Quota target: %d\n", project.Counts)
	},
}

func init() {
	CreateProjectCmd.Flags().StringVar(&projectIdentifierFlag, "identifier", "", "External project identifier")
	CreateProjectCmd.Flags().Int64Var(&projectCountsFlag, "counts", 0, "Quota target (completes accepted)")
	CreateProjectCmd.Flags().UintVar(&projectClientIDFlag, "client", 0, "Owning client id")
	CreateProjectCmd.Flags().StringArrayVar(&projectLinksFlag, "link", nil, "Country link as COUNTRY=url (repeatable)")

	CreateProjectCmd.MarkFlagRequired("identifier")
	CreateProjectCmd.MarkFlagRequired("counts")

	cmd.RootCmd.AddCommand(CreateProjectCmd)
}
