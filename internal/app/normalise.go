package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/AJMedia-landers/ads-console/internal/cli"
	"github.com/AJMedia-landers/ads-console/internal/config"
	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/logging"
	"github.com/AJMedia-landers/ads-console/internal/reconcile"
)

// runNormalise executes one synchronous normalization pass and prints the
// run stats as JSON. The HTTP server runs the same job through its
// single-flight runner; this command is for operators and cron.
func runNormalise(args []string) int {
	fs := flag.NewFlagSet("normalise", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall job timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("normalise failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	job := reconcile.NewJob(pool, logger)
	stats, err := job.Execute(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("normalization run failed")
		fmt.Fprintf(os.Stderr, "Normalization failed: %v\n", err)
		return 1
	}

	encoded, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode stats: %v\n", err)
		return 1
	}
	fmt.Println(string(encoded))
	return 0
}
