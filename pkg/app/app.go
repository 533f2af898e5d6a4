// Package app wires configuration into the collaborators every front end shares.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codeGROOVE-dev/vibetime/pkg/config"
	"github.com/codeGROOVE-dev/vibetime/pkg/fortune"
	"github.com/codeGROOVE-dev/vibetime/pkg/gemini"
	"github.com/codeGROOVE-dev/vibetime/pkg/geocode"
	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/metrics"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
	"github.com/codeGROOVE-dev/vibetime/pkg/store"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
)

const (
	geminiCacheSize = 1_000
	geminiCacheTTL  = 24 * time.Hour
)

// App is the assembled set of services.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    store.Store
	Metrics  *metrics.Collector
	Gemini   *gemini.Client
	Geocoder *geocode.Client
	Provider *suggest.Provider
	Oracle   *fortune.Oracle
	Session  *session.Session
}

// Options adjust New.
type Options struct {
	// Registerer enables metrics when set.
	Registerer prometheus.Registerer
	// LocalZone overrides the detected host zone used by first-run bootstrap.
	LocalZone string
	// Now overrides the session clock.
	Now func() time.Time
}

// New builds every service from cfg. Missing Gemini or Maps credentials
// disable those features rather than failing.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}
	if opts.Registerer != nil {
		a.Metrics = metrics.NewCollector(opts.Registerer)
	}

	st, err := OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	a.Store = st

	a.Gemini = a.newGemini(ctx)
	if cfg.Maps.APIKey != "" {
		a.Geocoder = geocode.NewClient(cfg.Maps.APIKey, &http.Client{Timeout: 10 * time.Second}, logger)
	}

	providerOpts := []suggest.Option{suggest.WithLogger(logger)}
	var gen fortune.Generator
	if a.Gemini != nil {
		providerOpts = append(providerOpts, suggest.WithRemote(a.Gemini))
		gen = a.Gemini
	}
	var observeFortune func(bool)
	var observeWrite func(string, error)
	if a.Metrics != nil {
		m := a.Metrics
		providerOpts = append(providerOpts, suggest.WithObserver(func(s suggest.Source) { m.RecordSuggestion(string(s)) }))
		observeFortune = m.RecordFortune
		observeWrite = m.RecordStateWrite
	}
	a.Provider = suggest.NewProvider(providerOpts...)
	a.Oracle = fortune.NewOracle(gen, logger, observeFortune)

	theme, ok := session.ParseTheme(cfg.General.Theme)
	if !ok {
		logger.Warn("unknown theme in config, using light", "theme", cfg.General.Theme)
	}
	localZone := opts.LocalZone
	if localZone == "" {
		localZone = locations.LocalZone()
	}
	sessOpts := []session.Option{
		session.WithLogger(logger),
		session.WithBootstrap(localZone, BootstrapCities(cfg.Bootstrap)),
		session.WithDefaultTheme(theme),
	}
	if observeWrite != nil {
		sessOpts = append(sessOpts, session.WithWriteObserver(observeWrite))
	}
	if opts.Now != nil {
		sessOpts = append(sessOpts, session.WithClock(opts.Now))
	}
	a.Session, err = session.Open(ctx, st, sessOpts...)
	if err != nil {
		_ = st.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("opening session: %w", err)
	}

	logger.Debug("app ready",
		"store", cfg.Store.Backend,
		"has_gemini", a.Gemini != nil,
		"has_maps_key", a.Geocoder != nil,
		"locations", len(a.Session.Locations()))
	return a, nil
}

func (a *App) newGemini(ctx context.Context) *gemini.Client {
	gc := a.Config.Gemini
	if gc.APIKey == "" && gc.GCPProject == "" {
		return nil
	}
	cfg := gemini.Config{
		Logger:            a.Logger,
		Cache:             gemini.NewMemoryCache(geminiCacheSize, geminiCacheTTL),
		APIKey:            gc.APIKey,
		Model:             gc.Model,
		GCPProject:        gc.GCPProject,
		Location:          gc.Location,
		Timeout:           gc.Timeout.Duration,
		RequestsPerMinute: gc.RequestsPerMinute,
	}
	if a.Metrics != nil {
		cfg.Observe = a.Metrics.ObserveGemini
	}
	client, err := gemini.New(ctx, cfg)
	if err != nil {
		a.Logger.Warn("gemini unavailable, continuing with local features only", "error", err)
		return nil
	}
	return client
}

// OpenStore opens the configured state backend.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.Store, error) {
	switch cfg.Backend {
	case "redis":
		st, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   cfg.RedisPrefix,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		st, err := store.NewFileStore(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

// BootstrapCities converts configured cities, falling back to the built-in defaults.
func BootstrapCities(cfg config.BootstrapConfig) []locations.Location {
	if len(cfg.Cities) == 0 {
		return locations.DefaultCities
	}
	out := make([]locations.Location, len(cfg.Cities))
	for i, c := range cfg.Cities {
		out[i] = locations.Location{Name: c.Name, Timezone: c.Timezone, CountryCode: c.Country}
	}
	return out
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
