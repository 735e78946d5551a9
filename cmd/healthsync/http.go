package main

import (
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/lifepulse-app/lifepulse/cmd/healthsync/daterange"
	"github.com/lifepulse-app/lifepulse/cmd/healthsync/runner"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"go.uber.org/zap"
)

// SetupRestAPI initializes the REST API and starts listening
func SetupRestAPI(service *runner.Service) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - Logs to stdout.
	//   - RFC3339 with UTC time format.
	router.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	router.Use(ginzap.RecoveryWithZap(zap.L(), true))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "online")
	})

	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"collecting": service.Busy()})
	})

	router.POST("/collect", func(c *gin.Context) {
		handleCollect(c, service)
	})

	apiPort, err := env.GetAsString("API_PORT", false, ":8080")
	if err != nil {
		zap.S().Fatal(err)
	}
	go func() {
		err := router.Run(apiPort)
		if err != nil {
			zap.S().Errorf("Error starting API: %s", err)
		}
	}()
}

// handleCollect triggers one on-demand run. Either a preset period or an
// explicit start/end pair selects the window; with neither it defaults to
// today.
func handleCollect(c *gin.Context, service *runner.Service) {
	var result *runner.RunResult
	var err error

	start := c.Query("start")
	end := c.Query("end")
	if start != "" || end != "" {
		result, err = service.CollectAndUploadRange(c.Request.Context(), start, end)
	} else {
		period := daterange.Period(c.DefaultQuery("period", string(daterange.Today)))
		result, err = service.CollectAndUpload(c.Request.Context(), period)
	}

	switch {
	case errors.Is(err, runner.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "collection already in progress"})
	case errors.Is(err, runner.ErrNoIdentity):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "no user identity configured"})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "records": len(result.Records)})
	default:
		c.JSON(http.StatusOK, gin.H{
			"records":  len(result.Records),
			"degraded": result.Degraded,
			"start":    result.Range.Start.Format(time.RFC3339),
			"end":      result.Range.End.Format(time.RFC3339),
		})
	}
}
