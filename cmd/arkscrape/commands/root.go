package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"arkscrape/internal/logsapi"
	"arkscrape/lib/configutil"
	"arkscrape/lib/telemetry"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "arkscrape",
	Short: "arkscrape fetches combat encounter logs from the remote logging service and stores them for analysis.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print extra progress information")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	Endpoints logsapi.Config `json:"endpoints"`
	// DataDir holds one database file per scraped cache key.
	DataDir string `json:"data_dir"`
	// DatabaseURL points the store at a remote libsql database instead.
	DatabaseURL string `json:"database_url"`
}

// loadConfig layers arkscrape.json5, .env and the process environment.
// LOGS_ENDPOINT / IDS_ENDPOINT env vars win over the config file. A
// missing endpoint only warns here; building the client fails on it.
func loadConfig() (Config, error) {
	godotenv.Load(".env")

	cfg, err := configutil.ReadConfig[Config]("arkscrape.json5")
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}

	if v := os.Getenv("LOGS_ENDPOINT"); v != "" {
		cfg.Endpoints.ListEndpoint = v
	}
	if v := os.Getenv("IDS_ENDPOINT"); v != "" {
		cfg.Endpoints.BulkEndpoint = v
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	if cfg.Endpoints.ListEndpoint == "" {
		slog.Warn("LOGS_ENDPOINT is not set and no list endpoint is configured")
	}
	if cfg.Endpoints.BulkEndpoint == "" {
		slog.Warn("IDS_ENDPOINT is not set and no bulk endpoint is configured")
	}
	return cfg, nil
}
