// Package cli provides the command-line interface for geosearch.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"geosearch/internal/config"
	"geosearch/internal/eventbus"
	"geosearch/internal/logging"
	"geosearch/internal/nominatim"
)

// App holds the configuration, logger and event bus shared by commands
type App struct {
	Config  *config.Config
	Configs config.ConfigService
	Bus     eventbus.EventBus
	Logger  zerolog.Logger

	closer io.Closer
}

// NewApp loads configuration for cmd and opens the log file it names
func NewApp(cmd *cobra.Command) (*App, error) {
	path, _ := cmd.Flags().GetString("config")
	opts := []config.Option{config.WithPath(path), config.WithFlags(cmd.Flags())}

	// the log file location comes from the config itself
	boot, err := config.NewConfigService(opts...).Load()
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.Open(logging.Config{
		Level:      boot.Logging.Level,
		Format:     boot.Logging.Format,
		File:       boot.Logging.File,
		TimeFormat: logging.DefaultConfig().TimeFormat,
	})
	if err != nil {
		return nil, err
	}

	bus := eventbus.New(logger)
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ConfigLoadedEvent); ok {
			logger.Info().Str("path", ev.Path).Msg("configuration loaded")
		}
	})

	configs := config.NewConfigService(append(opts, config.WithBus(bus))...)
	cfg, err := configs.Load()
	if err != nil {
		bus.Close()
		_ = closer.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Configs: configs,
		Bus:     bus,
		Logger:  logger,
		closer:  closer,
	}, nil
}

// Context attaches the app logger to ctx
func (a *App) Context(ctx context.Context) context.Context {
	return logging.WithContext(ctx, a.Logger)
}

// Searcher builds the Nominatim client described by the configuration.
// Requests are throttled when search.rate_limit is positive.
func (a *App) Searcher() *nominatim.Client {
	return newSearcher(a.Config)
}

func newSearcher(cfg *config.Config) *nominatim.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Search.RateLimit > 0 {
		transport = nominatim.NewThrottledTransport(transport, cfg.Search.RateLimit)
	}
	return nominatim.New(
		nominatim.WithEndpoint(cfg.Search.Endpoint),
		nominatim.WithLanguage(cfg.Search.Language),
		nominatim.WithUserAgent(cfg.Search.UserAgent),
		nominatim.WithHTTPClient(&http.Client{
			Timeout:   cfg.Search.Timeout.Std(),
			Transport: transport,
		}),
	)
}

// Close stops the event bus and closes the log file
func (a *App) Close() error {
	if a.Bus != nil {
		a.Bus.Close()
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
	}
	return nil
}
