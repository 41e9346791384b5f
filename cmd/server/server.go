package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/amigo-insight/surveydash/cmd"
	"github.com/amigo-insight/surveydash/internal/api"
	"github.com/amigo-insight/surveydash/internal/config"
	"github.com/amigo-insight/surveydash/internal/geoip"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/monitor"
	"github.com/amigo-insight/surveydash/internal/repository"
	"github.com/amigo-insight/surveydash/internal/services"
	"github.com/amigo-insight/surveydash/internal/workers"
)

// RunServerCmd represents the 'run-server' Cobra command: the entry point
// that wires the stores, the pipelines, the background workers and the HTTP
// server together.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Runs the survey routing API server and its background processes.",
	Long: `This command initializes the database, configures the click intake and
status resolution pipelines, starts the request-log workers and the survey
link monitor, then launches the HTTP server.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load configuration")
		}

		loc, err := cfg.ReportingLocation()
		if err != nil {
			logrus.WithError(err).Fatal("Failed to resolve reporting timezone")
		}

		// TranslateError turns driver-level unique violations into
		// gorm.ErrDuplicatedKey, which the intake pipeline relies on for
		// the storage-level UID dedupe.
		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{TranslateError: true})
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to database")
		}

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

		// Repositories
		projectRepo := repository.NewProjectRepository(db)
		vendorRepo := repository.NewVendorRepository(db)
		responseRepo := repository.NewResponseRepository(db)
		countsRepo := repository.NewCountsRepository(db)
		clientRepo := repository.NewClientRepository(db)
		requestLogRepo := repository.NewRequestLogRepository(db)
		logrus.Info("Repositories initialized")

		// External collaborators, each on its own bounded HTTP client
		geoResolver := geoip.NewHTTPResolver(cfg.GeoIP.BaseURL, &http.Client{Timeout: cfg.GeoIPTimeout()})
		notifier := services.NewVendorNotifier(&http.Client{Timeout: cfg.NotifyTimeout()})

		// Business services
		intakeService := services.NewIntakeService(projectRepo, vendorRepo, responseRepo,
			geoResolver, cfg.GeoIP.FailOpen, loc)
		resolutionService := services.NewResolutionService(responseRepo, projectRepo, vendorRepo,
			countsRepo, notifier, loc)
		projectService := services.NewProjectService(projectRepo, vendorRepo, clientRepo)
		vendorService := services.NewVendorService(vendorRepo)
		reportingService := services.NewReportingService(responseRepo, countsRepo, projectRepo)
		logrus.Info("Business services initialized")

		// Request-log channel and worker pool
		logEvents := make(chan models.RequestLogEvent, cfg.RequestLog.BufferSize)
		api.RequestLogChannel = logEvents
		workers.StartRequestLogWorkers(cfg.RequestLog.WorkerCount, logEvents, requestLogRepo)
		logrus.Infof("Request log channel initialized with a buffer of %d, %d worker(s) started",
			cfg.RequestLog.BufferSize, cfg.RequestLog.WorkerCount)

		// Survey link monitor
		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		linkMonitor := monitor.NewLinkMonitor(projectRepo, monitorInterval)
		go linkMonitor.Start()
		logrus.Infof("Survey link monitor started with an interval of %v", monitorInterval)

		// Gin router and routes
		router := gin.Default()
		api.SetupRoutes(router, &api.Deps{
			Intake:     intakeService,
			Resolution: resolutionService,
			Projects:   projectService,
			Vendors:    vendorService,
			Reporting:  reportingService,
		}, cfg.RequestLog.BufferSize)
		logrus.Info("API routes configured")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		go func() {
			logrus.Infof("Starting server on %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.WithError(err).Fatal("Failed to start server")
			}
		}()

		// Graceful shutdown on SIGINT/SIGTERM
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutdown signal received, stopping server...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}

		// No more requests in flight: stop feeding the workers and give them
		// time to drain the channel.
		close(logEvents)
		time.Sleep(2 * time.Second)

		logrus.Info("Server stopped cleanly")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
