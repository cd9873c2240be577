package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"perfeval/internal/app/server"
	"perfeval/internal/domain/scoring"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/db"
	"perfeval/internal/platform/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "perfeval",
		Short:         "Performance evaluation scoring and self-assessment service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newScoreCmd())
	return root
}

func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, cfg)
			if err != nil {
				logger.Error("startup failed", zap.Error(err))
				return err
			}
			defer app.Close()
			return app.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			pool, err := db.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.Migrate(ctx, pool, os.DirFS(cfg.MigrationsDir))
			if err != nil {
				return eris.Wrap(err, "migrate")
			}
			logger.Info("migrations applied", zap.Int("count", applied))
			if seed || cfg.RunSeed {
				seeded, err := db.Seed(ctx, pool)
				if err != nil {
					return eris.Wrap(err, "seed")
				}
				logger.Info("seed data loaded", zap.Int("values", seeded))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load default company values into an empty database")
	return cmd
}

func newScoreCmd() *cobra.Command {
	var (
		target   float64
		achieved float64
		policy   string
		ratings  string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a KPI result or a set of behavior ratings without a database",
		Example: "  perfeval score --target 100 --achieved 92 --policy higher_better\n" +
			"  perfeval score --ratings 4,5,3",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("ratings") {
				return printBehaviorScore(out, ratings)
			}
			if !cmd.Flags().Changed("target") || !cmd.Flags().Changed("achieved") {
				return fmt.Errorf("either --ratings or both --target and --achieved are required")
			}
			p := scoring.TargetPolicy(policy)
			if !p.Valid() {
				return fmt.Errorf("--policy must be one of higher_better, lower_better, target_range")
			}
			return writeJSON(out, map[string]any{
				"target":       target,
				"achieved":     achieved,
				"targetPolicy": p,
				"score":        scoring.ScoreFromTarget(target, achieved, p),
			})
		},
	}
	cmd.Flags().Float64Var(&target, "target", 0, "target value")
	cmd.Flags().Float64Var(&achieved, "achieved", 0, "achieved value")
	cmd.Flags().StringVar(&policy, "policy", string(scoring.PolicyHigherBetter), "target policy")
	cmd.Flags().StringVar(&ratings, "ratings", "", "comma separated behavior ratings")
	return cmd
}

func printBehaviorScore(out io.Writer, raw string) error {
	var ratings []any
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ratings = append(ratings, part)
		}
	}
	if ratings == nil {
		ratings = []any{}
	}
	return writeJSON(out, map[string]any{
		"ratings": ratings,
		"score":   scoring.ScoreFromBehaviors(ratings),
	})
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
