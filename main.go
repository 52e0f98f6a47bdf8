package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"otaku-manga/internal/cache"
	"otaku-manga/internal/filesystem"
	"otaku-manga/internal/handlers"
	"otaku-manga/internal/library"
	"otaku-manga/internal/logging"
	"otaku-manga/internal/memory"
	"otaku-manga/internal/metrics"
	"otaku-manga/internal/middleware"
	"otaku-manga/internal/startup"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout = 30 * time.Second
	statsInterval   = time.Minute
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"content": config.ContentDir,
	}))

	// Build the first index before accepting traffic
	scanner := library.NewScanner(config.ContentDir, config.ManifestPath)
	scanner.SetWorkers(config.ScanWorkers)
	index := cache.New(scanner, cache.Options{Interval: config.ScanInterval})

	indexStart := time.Now()
	counts := index.Get().Counts()
	startup.LogIndexInit(config.ScanInterval, counts.Manga, counts.Chapters, time.Since(indexStart))
	index.StartRefresher()

	var watcher *cache.Watcher
	if config.WatchEnabled {
		watcher, err = startWatcher(config, index)
		startup.LogWatcherStarted(err)
	}

	collector := metrics.NewCollector(index, statsInterval)
	collector.Start()

	h := handlers.New(index, handlers.Options{
		ContentDir: config.ContentDir,
		SiteURL:    config.SiteURL,
		SiteTitle:  config.SiteTitle,
		PageSize:   config.PageSize,
	})

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      wrapHandler(router, config),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, index, watcher, collector)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

// startWatcher returns nil and the error when the watcher cannot run; the
// refresh interval still picks up changes then.
func startWatcher(config *startup.Config, index *cache.Cache) (*cache.Watcher, error) {
	watcher, err := cache.NewWatcher(config.ContentDir, config.ManifestPath, index)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	return r
}

// wrapHandler applies the outer middleware: access logging, then compression.
func wrapHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	logged := middleware.Logger(loggingConfig)(router)

	return middleware.Compression(middleware.DefaultCompressionConfig())(logged)
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, index *cache.Cache, watcher *cache.Watcher, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if watcher != nil {
		startup.LogShutdownStep("Stopping content watcher")
		watcher.Stop()
		startup.LogShutdownStepComplete("Content watcher stopped")
	}

	startup.LogShutdownStep("Stopping index refresher")
	index.StopRefresher()
	startup.LogShutdownStepComplete("Index refresher stopped")

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
