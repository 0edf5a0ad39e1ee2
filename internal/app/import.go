package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/AJMedia-landers/ads-console/internal/cli"
	"github.com/AJMedia-landers/ads-console/internal/config"
	"github.com/AJMedia-landers/ads-console/internal/db"
	"github.com/AJMedia-landers/ads-console/internal/logging"
	"github.com/AJMedia-landers/ads-console/internal/mapping"
	"github.com/AJMedia-landers/ads-console/internal/ruleset"
)

// runImport loads a ruleset JSON file and creates its rules through the
// same path the console uses, cascades included. Rules that already exist
// are skipped and reported, not treated as failures.
func runImport(args []string) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	file := fs.String("file", "", "Path to the ruleset JSON file (required)")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall import timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		return 2
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read ruleset file: %v\n", err)
		return 1
	}

	rules, err := ruleset.Parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid ruleset: %v\n", err)
		return 1
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
		logger.Error().Err(err).Msg("import failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	store := mapping.NewStore(pool, logger)

	var created, skipped, failed int
	var adsUpdated int64
	for i, rule := range rules.Rules {
		switch rule.Kind {
		case ruleset.KindURL:
			result, err := store.CreateURLRule(ctx, rule.Match, rule.Category)
			if err != nil {
				if errors.Is(err, mapping.ErrDuplicateRule) {
					skipped++
					fmt.Fprintf(os.Stderr, "skip rules[%d]: url %q already mapped\n", i, rule.Match)
					continue
				}
				failed++
				logger.Error().Err(err).Str("url", rule.Match).Msg("import url rule failed")
				fmt.Fprintf(os.Stderr, "fail rules[%d]: %v\n", i, err)
				continue
			}
			created++
			adsUpdated += result.AdsUpdated
		case ruleset.KindTitle:
			result, err := store.CreateTitleRule(ctx, rule.Match, rule.Category, rule.TranslatedTitle)
			if err != nil {
				if errors.Is(err, mapping.ErrDuplicateRule) {
					skipped++
					fmt.Fprintf(os.Stderr, "skip rules[%d]: title %q already mapped\n", i, rule.Match)
					continue
				}
				failed++
				logger.Error().Err(err).Str("title", rule.Match).Msg("import title rule failed")
				fmt.Fprintf(os.Stderr, "fail rules[%d]: %v\n", i, err)
				continue
			}
			created++
			adsUpdated += result.AdsUpdated
		}
	}

	logger.Info().
		Int("created", created).
		Int("skipped", skipped).
		Int("failed", failed).
		Int64("ads_updated", adsUpdated).
		Msg("ruleset import finished")
	fmt.Printf("imported %d rules (%d skipped, %d failed), %d ads updated\n", created, skipped, failed, adsUpdated)

	if failed > 0 {
		return 1
	}
	return 0
}
