package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/lifepulse-app/lifepulse/cmd/healthsync/collector"
	"github.com/lifepulse-app/lifepulse/cmd/healthsync/daterange"
	"github.com/lifepulse-app/lifepulse/cmd/healthsync/permission"
	"github.com/lifepulse-app/lifepulse/cmd/healthsync/runner"
	"github.com/lifepulse-app/lifepulse/cmd/healthsync/sources"
	"github.com/lifepulse-app/lifepulse/cmd/healthsync/upload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"github.com/united-manufacturing-hub/umh-utils/logger"
	"go.uber.org/zap"
)

func main() {
	InitLogging()
	InitPrometheus()
	InitHealthCheck()

	bridgeURL, err := env.GetAsString("DEVICE_BRIDGE_URL", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	backendURL, err := env.GetAsString("BACKEND_URL", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	uid, err := env.GetAsString("USER_ID", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	period, _ := env.GetAsString("COLLECT_PERIOD", false, string(daterange.Today)) //nolint:errcheck
	intervalSeconds, err := env.GetAsInt("COLLECT_INTERVAL_SECONDS", false, 3600)
	if err != nil {
		zap.S().Fatal(err)
	}

	bridge := sources.NewDeviceBridge(bridgeURL)
	perms := permission.NewCache()

	motion := sources.NewMotionAdapter(sources.NewBridgeMotionStore(bridge))
	motion.Start(context.Background())

	service := runner.New(
		uid,
		collector.New(
			sources.NewHealthAdapter(bridge, perms),
			sources.NewCalendarAdapter(bridge, perms, nil),
			motion,
		),
		upload.NewClient(backendURL),
	)

	SetupRestAPI(service)

	go collectLoop(service, daterange.Period(period), time.Duration(intervalSeconds)*time.Second)

	awaitShutdown(motion)
	select {}
}

// collectLoop runs one collection immediately and then one per interval.
// A run still in flight when the next tick fires is simply skipped.
func collectLoop(service *runner.Service, period daterange.Period, interval time.Duration) {
	run := func() {
		_, err := service.CollectAndUpload(context.Background(), period)
		switch err {
		case nil:
		case runner.ErrBusy:
			zap.S().Infof("Skipping tick, previous run still in flight")
		default:
			zap.S().Warnf("Scheduled run failed: %s", err)
		}
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		run()
	}
}

func awaitShutdown(motion *sources.MotionAdapter) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigs
		zap.S().Infof("Received SIG %v", sig)
		motion.Stop()
		os.Exit(0)
	}()
}

func InitLogging() {
	logLevel, _ := env.GetAsString("LOGGING_LEVEL", false, "PRODUCTION") //nolint:errcheck
	_ = logger.New(logLevel)
}

func InitPrometheus() {
	metricsPath := "/metrics"
	metricsPort := ":2112"
	zap.S().Debugf("Setting up metrics %s %v", metricsPath, metricsPort)

	http.Handle(metricsPath, promhttp.Handler())
	go func() {
		/* #nosec G114 */
		err := http.ListenAndServe(metricsPort, nil)
		if err != nil {
			zap.S().Errorf("Error starting metrics: %s", err)
		}
	}()
}

func InitHealthCheck() {
	zap.S().Debugf("Setting up healthcheck")

	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000000))
	go func() {
		/* #nosec G114 */
		err := http.ListenAndServe("0.0.0.0:8086", health)
		if err != nil {
			zap.S().Errorf("Error starting healthcheck: %s", err)
		}
	}()
}
