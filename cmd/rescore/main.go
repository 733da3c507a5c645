// Command rescore recomputes the composite score of every submitted claim,
// typically after the scoring configuration changed.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/campusfind/internal/adapter/postgres"
	"github.com/pscheid92/campusfind/internal/app"
	"github.com/pscheid92/campusfind/internal/platform/config"
	"github.com/pscheid92/campusfind/internal/platform/logging"
	"github.com/pscheid92/campusfind/internal/scoring"
	"github.com/spf13/cobra"
)

type options struct {
	databaseURL string
	dryRun      bool
	verbose     bool
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "rescore",
		Short: "Recompute scores of all submitted claims",
		Long: `Rescore loads every claim that is still awaiting review and recomputes its
composite score with the current scoring settings (SCORE_TIME_TOLERANCE,
SCORE_TYPO_TOLERANCE). Decided claims keep the score they were decided with.

Example:
  rescore --dry-run
  rescore --database-url postgres://localhost/campusfind --timeout 10m`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report changes without writing them")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "total timeout")

	return cmd
}

func run(ctx context.Context, opts options) error {
	if opts.databaseURL != "" {
		if err := os.Setenv("DATABASE_URL", opts.databaseURL); err != nil {
			return fmt.Errorf("set DATABASE_URL: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StorageBackend != config.BackendPostgres || cfg.DatabaseURL == "" {
		return errors.New("rescore needs the postgres backend (--database-url or DATABASE_URL)")
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logging.Init(level, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	scorer := scoring.NewScorer(scoring.Config{
		Weights:       scoring.DefaultWeights,
		TimeTolerance: cfg.ScoreTimeTolerance,
		TypoTolerance: cfg.ScoreTypoTolerance,
	})
	repos := app.Repositories{
		Items:      store.Items(),
		Questions:  store.Questions(),
		Claims:     store.Claims(),
		Transactor: store.Transactor(),
	}
	svc := app.NewService(repos, scorer, nil, nil, nil, clockwork.NewRealClock())
	defer svc.Close()

	start := time.Now()
	slog.Info("Starting rescore", "dry_run", opts.dryRun)

	report, err := svc.RescoreSubmitted(ctx, opts.dryRun)
	if err != nil {
		return fmt.Errorf("rescore: %w", err)
	}

	slog.Info("Rescore summary",
		"dry_run", opts.dryRun,
		"scanned", report.Scanned,
		"changed", report.Changed,
		"skipped", report.Skipped,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
