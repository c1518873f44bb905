package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"execmind/internal/config"
	"execmind/internal/logging"
	"execmind/internal/perception"
	"execmind/internal/research"
	"execmind/internal/store"
	"execmind/internal/workflow"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// app holds every collaborator one command needs.
type app struct {
	workspace  string
	configPath string
	cfg        *config.Config

	store       *store.LocalStore
	gateway     perception.Gateway
	transcriber perception.Transcriber
	searcher    research.Searcher
	metrics     *workflow.Metrics

	closeSearch func() error
	metricsSrv  *http.Server
}

func resolveWorkspace() (string, error) {
	if workspace != "" {
		return filepath.Abs(workspace)
	}
	return os.Getwd()
}

func resolveConfigPath(ws string) string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(ws, config.DefaultPath)
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(ws string) (*config.Config, string, error) {
	path := resolveConfigPath(ws)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if timeout > 0 {
		cfg.LLM.Timeout = timeout.String()
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if !filepath.IsAbs(cfg.Memory.DatabasePath) {
		cfg.Memory.DatabasePath = filepath.Join(ws, cfg.Memory.DatabasePath)
	}
	return cfg, path, nil
}

// newApp wires the store and, when withGateway is set, the gateway,
// transcriber, searcher and metrics. Read-only commands skip the gateway so
// they work without an API key.
func newApp(ctx context.Context, withGateway bool) (*app, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}
	cfg, path, err := loadConfig(ws)
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(ws, cfg.Logging.Options(verbose)); err != nil {
		logger.Warn("Logging disabled", zap.Error(err))
	}
	logging.Boot("Config: %s", path)

	a := &app{
		workspace:   ws,
		configPath:  path,
		cfg:         cfg,
		closeSearch: func() error { return nil },
	}

	a.store, err = store.NewLocalStore(cfg.Memory.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Store opened", zap.String("path", a.store.Path()))

	if !withGateway {
		return a, nil
	}

	if err := cfg.Validate(); err != nil {
		a.Close()
		return nil, err
	}

	gw, err := perception.NewGatewayFromConfig(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.gateway = perception.NewTracingClient(gw, a.store, cfg.LLM.Provider)

	if cfg.Transcription.Enabled {
		a.transcriber = perception.NewWhisperClient(perception.WhisperConfig{
			APIKey:  cfg.Transcription.APIKey,
			BaseURL: cfg.Transcription.BaseURL,
			Model:   cfg.Transcription.Model,
			Timeout: cfg.GetTranscriptionTimeout(),
		})
	}

	a.searcher, a.closeSearch = research.NewSearcherFromConfig(cfg)
	a.metrics = workflow.NewMetrics()
	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}

	logger.Info("Gateway ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.Bool("research", cfg.Research.Enabled))
	return a, nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.metrics.Registry(), promhttp.HandlerOpts{}))
	a.metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.BootWarn("Metrics server stopped: %v", err)
		}
	}()
	logging.Boot("Metrics on %s/metrics", addr)
}

// deps returns the workflow collaborators.
func (a *app) deps() workflow.Deps {
	return workflow.Deps{
		Gateway:       a.gateway,
		Store:         a.store,
		Searcher:      a.searcher,
		Context:       workflow.FileContext{Path: a.contextFile()},
		Metrics:       a.metrics,
		HistoryLimit:  a.cfg.Memory.HistoryLimit,
		MaxWebResults: a.cfg.Research.MaxResults,
	}
}

func (a *app) contextFile() string {
	p := a.cfg.Workflow.ContextFile
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.workspace, p)
}

// Close releases everything newApp opened.
func (a *app) Close() {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metricsSrv.Shutdown(ctx)
		cancel()
	}
	if err := a.closeSearch(); err != nil {
		logging.BootWarn("Failed to close browser: %v", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	logging.CloseAll()
}
