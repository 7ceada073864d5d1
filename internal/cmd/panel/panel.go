// Package panel parses panel command flags and launches the panel server.
package panel

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/restpanel/internal/platform/cmd"
	"github.com/louisbranch/restpanel/internal/services/panel"
)

// Config holds the panel command configuration.
type Config struct {
	HTTPAddr        string        `env:"RESTPANEL_PANEL_ADDR" envDefault:"localhost:8080"`
	ProviderTimeout time.Duration `env:"RESTPANEL_PROVIDER_TIMEOUT" envDefault:"5s"`
	RecordsPath     string        `env:"RESTPANEL_RECORDS_PATH"`
	TotalPath       string        `env:"RESTPANEL_TOTAL_PATH"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, func(fs *flag.FlagSet, cfg *Config) {
		fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
		fs.DurationVar(&cfg.ProviderTimeout, "provider-timeout", cfg.ProviderTimeout, "Timeout for each data provider request")
		fs.StringVar(&cfg.RecordsPath, "records-path", cfg.RecordsPath, "JSON path of the records array in list responses (empty for a bare array)")
		fs.StringVar(&cfg.TotalPath, "total-path", cfg.TotalPath, "JSON path of the total count in list responses (empty for the X-Total-Count header)")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the panel server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePanel, func(ctx context.Context) error {
		server, err := panel.NewServer(panel.Config{
			HTTPAddr:        cfg.HTTPAddr,
			ProviderTimeout: cfg.ProviderTimeout,
			RecordsPath:     cfg.RecordsPath,
			TotalPath:       cfg.TotalPath,
		})
		if err != nil {
			return fmt.Errorf("init panel server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve panel: %w", err)
		}
		return nil
	})
}
