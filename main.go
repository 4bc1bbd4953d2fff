package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vidstream/internal/catalog"
	"vidstream/internal/gate"
	"vidstream/internal/handlers"
	"vidstream/internal/hls"
	"vidstream/internal/logging"
	"vidstream/internal/metrics"
	"vidstream/internal/middleware"
	"vidstream/internal/probe"
	"vidstream/internal/startup"
	"vidstream/internal/thumbs"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics(startup.Version, startup.Commit)

	// Catalog
	startup.LogCatalogInit(config.CatalogTTL)
	cat := catalog.New(config.LibraryDir, config.Extensions, config.CatalogTTL)
	cat.Start()
	startup.LogCatalogStarted(cat.AssetCount())

	// Transcode orchestrator and thumbnail generator
	startup.LogTranscoderInit(config.FFmpegPath, config.FFprobePath)
	prober := probe.NewFFProbe(config.FFprobePath)

	orch := hls.New(hls.Config{
		CacheDir:        config.CacheDir,
		FFmpegPath:      config.FFmpegPath,
		SegmentSeconds:  config.SegmentSeconds,
		SegmentWindow:   config.SegmentWindow,
		ManifestTimeout: config.ManifestTimeout,
	}, prober, hls.ExecRunner{}, gate.New(config.MaxEncodes))

	gen := thumbs.New(config.CacheDir, prober, thumbs.NewFFmpegExtractor(config.FFmpegPath), gate.New(config.MaxThumbnails))

	// Handlers and router
	h := handlers.New(cat, orch, gen, config)

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	startup.LogHTTPRoutes(router)

	// Middleware chain
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogMediaFiles = config.LogMediaFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	// WriteTimeout stays 0: manifest requests block on the encoder and
	// segment responses can be long-lived range reads.
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	if config.MetricsEnabled {
		go startMetricsServer(config.MetricsPort)
	}

	go handleShutdown(srv, cat, orch)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func startMetricsServer(port string) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.Info("Metrics server listening on :%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, cat *catalog.Service, orch *hls.Orchestrator) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping catalog watcher")
	cat.Stop()
	startup.LogShutdownStepComplete("Catalog watcher stopped")

	startup.LogShutdownStep("Stopping encoder processes")
	orch.Shutdown()
	startup.LogShutdownStepComplete("Encoder processes stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
