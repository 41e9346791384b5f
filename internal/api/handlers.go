package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/services"
)

// RequestLogChannel is the global channel used to send request-log events.
// This channel enables asynchronous request logging without blocking the
// click and callback paths.
var RequestLogChannel chan models.RequestLogEvent

// Deps groups everything the routes need injected.
type Deps struct {
	Intake     *services.IntakeService
	Resolution *services.ResolutionService
	Projects   *services.ProjectService
	Vendors    *services.VendorService
	Reporting  *services.ReportingService
}

// SetupRoutes configures all Gin API routes and injects necessary dependencies.
func SetupRoutes(router *gin.Engine, deps *Deps, bufferSize int) {
	if RequestLogChannel == nil {
		RequestLogChannel = make(chan models.RequestLogEvent, bufferSize)
	}
	router.Use(RequestLogMiddleware(RequestLogChannel))

	// Health Check Route - used for monitoring service availability
	router.GET("/health", HealthCheckHandler)

	// Click intake entry point and the participant-facing rejection page
	router.GET("/survey", SurveyClickHandler(deps.Intake))
	router.GET("/rejection", RejectionPageHandler)

	// The four terminal entry points feeding the status resolution pipeline
	router.GET("/survey/complete", ResolveHandler(deps.Resolution, models.StatusComplete))
	router.GET("/survey/terminate", ResolveHandler(deps.Resolution, models.StatusTerminate))
	router.GET("/survey/quotafull", ResolveHandler(deps.Resolution, models.StatusQuotafull))
	router.GET("/survey/securityTerminate", ResolveHandler(deps.Resolution, models.StatusSecurityTerminate))

	// Admin glue endpoints under /api/v1
	api := router.Group("/api/v1")
	{
		api.POST("/projects", CreateProjectHandler(deps.Projects))
		api.GET("/projects", ListProjectsHandler(deps.Projects))
		api.GET("/projects/:id", GetProjectHandler(deps.Projects))
		api.GET("/projects/:id/stats", ProjectStatsHandler(deps.Reporting))
		api.PATCH("/projects/:id/status", SetProjectStatusHandler(deps.Projects))
		api.POST("/projects/:id/vendors", AssignVendorHandler(deps.Projects))
		api.POST("/vendors", CreateVendorHandler(deps.Vendors))
		api.GET("/vendors", ListVendorsHandler(deps.Vendors))
		api.DELETE("/vendors/:username", HideVendorHandler(deps.Vendors))
		api.POST("/clients", CreateClientHandler(deps.Projects))
		api.GET("/clients", ListClientsHandler(deps.Projects))
		api.GET("/clients/:id/projects", ClientProjectsHandler(deps.Projects))
		api.GET("/responses", ListResponsesHandler(deps.Reporting))
		api.GET("/counts", VendorCountsHandler(deps.Reporting))
	}
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ClientIP resolves the participant's source address the way the upstream
// proxies present it: X-Forwarded-For first (first entry of a comma chain),
// then X-Real-IP, then the transport-level remote address.
func ClientIP(c *gin.Context) string {
	ip := c.GetHeader("X-Forwarded-For")
	if ip == "" || strings.EqualFold(ip, "unknown") {
		ip = c.GetHeader("X-Real-IP")
	}
	if ip == "" || strings.EqualFold(ip, "unknown") {
		ip = c.RemoteIP()
	}
	if idx := strings.Index(ip, ","); idx >= 0 {
		ip = ip[:idx]
	}
	return strings.TrimSpace(ip)
}

// clickQuery binds the four required click parameters from the vendor link.
type clickQuery struct {
	UID     string `form:"uid" binding:"required"`
	PID     string `form:"pid" binding:"required"`
	Token   string `form:"token" binding:"required"`
	Country string `form:"country" binding:"required"`
}

// SurveyClickHandler handles the click intake entry point. A successful
// click gets a 302 to the survey; every policy failure gets a 302 to the
// rejection page with its type; malformed requests get a direct 400.
func SurveyClickHandler(intake *services.IntakeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q clickQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "uid, pid, token and country are required"})
			return
		}

		redirectURL, err := intake.HandleClick(c.Request.Context(), services.ClickRequest{
			UID:          q.UID,
			ProjectToken: q.PID,
			VendorToken:  q.Token,
			Country:      q.Country,
			SourceIP:     ClientIP(c),
		})
		if err != nil {
			var rejection *customerrors.RejectionError
			if errors.As(err, &rejection) {
				c.Redirect(http.StatusFound, "/rejection?type="+string(rejection.Type))
				return
			}
			logrus.WithError(err).Error("Unexpected intake failure")
			c.Redirect(http.StatusFound, "/rejection?type="+string(models.RejectionInternalError))
			return
		}

		c.Redirect(http.StatusFound, redirectURL)
	}
}

// ResolveHandler handles one of the four terminal entry points. The vendor
// platform calls these with the participant UID; the response body reports
// what the resolution actually did, including a best-effort notification
// failure, which is the only visible partial success.
func ResolveHandler(resolution *services.ResolutionService, status models.SurveyStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.Query("UID")
		if uid == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "UID is required"})
			return
		}

		result, err := resolution.Resolve(c.Request.Context(), uid, status, ClientIP(c))
		if err != nil {
			if errors.Is(err, customerrors.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			logrus.WithError(err).WithField("uid", uid).Error("Status resolution failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		switch result.Outcome {
		case services.OutcomeNoMatch:
			c.JSON(http.StatusOK, gin.H{"result": string(result.Outcome), "uid": uid})
		case services.OutcomeAlreadyResolved:
			c.JSON(http.StatusOK, gin.H{"result": string(result.Outcome), "uid": uid, "project_id": result.ProjectID})
		default:
			body := gin.H{
				"result":     string(result.Outcome),
				"uid":        uid,
				"project_id": result.ProjectID,
				"status":     string(result.FinalStatus),
				"end_time":   result.EndTime.Format("2006-01-02 15:04:05"),
			}
			if result.NotifyError != "" {
				body["notify_error"] = result.NotifyError
			}
			c.JSON(http.StatusOK, body)
		}
	}
}

// rejectionPageTemplate is the minimal participant-facing page. The catalog
// supplies the title and message per rejection type.
const rejectionPageTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body class="rejection %s">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`

// RejectionPageHandler renders the human-readable rejection page for a
// given type. Unknown types render the internal-error page rather than
// failing.
func RejectionPageHandler(c *gin.Context) {
	rejectionType := models.ParseRejectionType(c.Query("type"))
	page := models.PageFor(rejectionType)

	logrus.WithField("type", rejectionType).Info("Rejection page requested")

	html := fmt.Sprintf(rejectionPageTemplate, page.Title, page.IconType, page.Title, page.Message)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// RequestLogMiddleware queues one event per inbound request on the logging
// channel using a non-blocking send: under load, events are dropped rather
// than delaying participants.
func RequestLogMiddleware(events chan<- models.RequestLogEvent) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := models.RequestLogEvent{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Query:      c.Request.URL.RawQuery,
			IPAddress:  ClientIP(c),
			UserAgent:  c.GetHeader("User-Agent"),
			StatusCode: c.Writer.Status(),
			Latency:    time.Since(start),
			Timestamp:  start,
		}

		select {
		case events <- event:
		default:
			logrus.WithField("path", event.Path).Warn("Request log channel full, dropping event")
		}
	}
}
