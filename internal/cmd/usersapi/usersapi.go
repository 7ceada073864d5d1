// Package usersapi parses users API flags and launches the service.
package usersapi

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/restpanel/internal/platform/cmd"
	"github.com/louisbranch/restpanel/internal/services/usersapi"
)

// Config holds the users API command configuration.
type Config struct {
	HTTPAddr string `env:"RESTPANEL_USERSAPI_ADDR" envDefault:"localhost:3000"`
	DBPath   string `env:"RESTPANEL_USERSAPI_DB_PATH" envDefault:"data/users.db"`
	SeedFile string `env:"RESTPANEL_USERSAPI_SEED_FILE"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, func(fs *flag.FlagSet, cfg *Config) {
		fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
		fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
		fs.StringVar(&cfg.SeedFile, "seed-file", cfg.SeedFile, "YAML users loaded when the database is empty")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the users API server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceUsersAPI, func(ctx context.Context) error {
		server, err := usersapi.NewServer(ctx, usersapi.Config{
			HTTPAddr: cfg.HTTPAddr,
			DBPath:   cfg.DBPath,
			SeedFile: cfg.SeedFile,
		})
		if err != nil {
			return fmt.Errorf("init users api server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve users api: %w", err)
		}
		return nil
	})
}
