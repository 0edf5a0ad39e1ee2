package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AJMedia-landers/ads-console/internal/cli"
	"github.com/AJMedia-landers/ads-console/internal/config"
	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/logging"
	"github.com/AJMedia-landers/ads-console/internal/mapping"
)

func runMerge(args []string) int {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	sourcesFlag := fs.String("sources", "", "Comma-separated source category labels (required)")
	target := fs.String("target", "", "Target category label (required)")
	timeout := fs.Duration("timeout", time.Minute, "Merge timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var sources []string
	for _, source := range strings.Split(*sourcesFlag, ",") {
		if trimmed := strings.TrimSpace(source); trimmed != "" {
			sources = append(sources, trimmed)
		}
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "--sources must name at least one category")
		return 2
	}
	if strings.TrimSpace(*target) == "" {
		fmt.Fprintln(os.Stderr, "--target is required")
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
		logger.Error().Err(err).Msg("merge failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	store := mapping.NewStore(pool, logger)
	result, err := store.MergeCategories(ctx, sources, *target)
	if err != nil {
		if errors.Is(err, mapping.ErrMergeTargetInSources) {
			fmt.Fprintln(os.Stderr, "--sources must not contain the target category")
			return 2
		}
		logger.Error().Err(err).Str("target", *target).Msg("merge categories failed")
		fmt.Fprintf(os.Stderr, "Merge failed: %v\n", err)
		return 1
	}

	fmt.Printf("merged %d categories into %q: %d mappings, %d title mappings, %d ads updated\n",
		len(sources), *target, result.URLMappings, result.TitleMappings, result.Ads)
	return 0
}
