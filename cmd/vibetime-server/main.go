// Command vibetime-server serves the world clock over HTTP and WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/codeGROOVE-dev/vibetime/pkg/app"
	"github.com/codeGROOVE-dev/vibetime/pkg/config"
	"github.com/codeGROOVE-dev/vibetime/pkg/server"
	"github.com/codeGROOVE-dev/vibetime/pkg/ticker"
)

var (
	addr         = flag.String("addr", "", "Listen address (or set VIBETIME_ADDR)")
	configPath   = flag.String("config", "", "Config file path (or set "+config.EnvConfigPath+")")
	storeDir     = flag.String("store-dir", "", "Directory for file-backed state")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	mapsAPIKey   = flag.String("maps-key", "", "Google Maps API key (or set GOOGLE_MAPS_API_KEY)")
	gcpProject   = flag.String("gcp-project", "", "GCP project ID (or set GCP_PROJECT)")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("vibetime server v0.3.0")
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "vibetime-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, path, err := config.Resolve(*configPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Flags win over the file and the environment.
	if *addr == "" {
		*addr = os.Getenv("VIBETIME_ADDR")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *storeDir != "" {
		cfg.Store.Backend = "file"
		cfg.Store.Path = *storeDir
	}
	if *geminiAPIKey != "" {
		cfg.Gemini.APIKey = *geminiAPIKey
	}
	if *mapsAPIKey != "" {
		cfg.Maps.APIKey = *mapsAPIKey
	}
	if *gcpProject != "" {
		cfg.Gemini.GCPProject = *gcpProject
	}

	logger.Info("configuration loaded",
		"path", path,
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Backend,
		"has_gemini_key", cfg.Gemini.APIKey != "",
		"has_gcp_project", cfg.Gemini.GCPProject != "",
		"has_maps_key", cfg.Maps.APIKey != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, logger, app.Options{Registerer: reg})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing app", "error", err)
		}
	}()

	ticks := ticker.New(time.Second, ticker.WithLogger(logger))
	go ticks.Run(ctx)

	sc := server.Config{
		Session:           a.Session,
		Provider:          a.Provider,
		Oracle:            a.Oracle,
		Ticks:             ticks,
		Metrics:           a.Metrics,
		Gatherer:          reg,
		Logger:            logger,
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
		Burst:             cfg.Server.Burst,
		SearchDebounce:    cfg.Suggest.Debounce.Duration,
		MinQueryLength:    cfg.Suggest.MinQueryLength,
	}
	if a.Gemini != nil {
		sc.Asker = a.Gemini
	}
	if a.Geocoder != nil {
		sc.Geocoder = a.Geocoder
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(sc).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout.Duration,
		WriteTimeout:      cfg.Server.WriteTimeout.Duration,
		IdleTimeout:       120 * time.Second,
	}
	return server.Serve(ctx, srv, logger)
}
