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

var (
	vendorUsernameFlag     string
	vendorEmailFlag        string
	vendorCompanyFlag      string
	vendorCompleteFlag     string
	vendorTerminateFlag    string
	vendorQuotafullFlag    string
	vendorSecurityTermFlag string
)

// CreateVendorCmd represents the 'create-vendor' command.
var CreateVendorCmd = &cobra.Command{
	Use:   "create-vendor",
	Short: "Onboards a vendor and prints its secret click token.",
	Long: `This command creates a vendor with its four per-status callback URL
templates. The printed click token authenticates the vendor's traffic and is
never regenerated.

Example:
  surveydash create-vendor --username=V1 --email=ops@vendor.example \
    --complete="https://vendor.example/cb/complete?uid=[UID]" \
    --terminate="https://vendor.example/cb/terminate?uid=[UID]"`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		if vendorUsernameFlag == "" {
			fmt.Println("Error: --username flag is required")
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

		vendorService := services.NewVendorService(repository.NewVendorRepository(db))

		vendor, err := vendorService.CreateVendor(services.CreateVendorInput{
			Username:             vendorUsernameFlag,
			Email:                vendorEmailFlag,
			CompanyName:          vendorCompanyFlag,
			CompleteURL:          vendorCompleteFlag,
			TerminateURL:         vendorTerminateFlag,
			QuotafullURL:         vendorQuotafullFlag,
			SecurityTerminateURL: vendorSecurityTermFlag,
		})
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create vendor")
		}

		fmt.Printf("Vendor created successfully:\n")
		fmt.Printf("Username: %s\n", vendor.Username)
		fmt.Printf("Click token: %s\n", vendor.Token)
	},
}

func init() {
	CreateVendorCmd.Flags().StringVar(&vendorUsernameFlag, "username", "", "Unique vendor username")
	CreateVendorCmd.Flags().StringVar(&vendorEmailFlag, "email", "", "Vendor contact email")
	CreateVendorCmd.Flags().StringVar(&vendorCompanyFlag, "company", "", "Vendor company name")
	CreateVendorCmd.Flags().StringVar(&vendorCompleteFlag, "complete", "", "Callback template for COMPLETE")
	CreateVendorCmd.Flags().StringVar(&vendorTerminateFlag, "terminate", "", "Callback template for TERMINATE")
	CreateVendorCmd.Flags().StringVar(&vendorQuotafullFlag, "quotafull", "", "Callback template for QUOTAFULL")
	CreateVendorCmd.Flags().StringVar(&vendorSecurityTermFlag, "security-terminate", "", "Callback template for SECURITYTERMINATE")

	CreateVendorCmd.MarkFlagRequired("username")

	cmd.RootCmd.AddCommand(CreateVendorCmd)
}
