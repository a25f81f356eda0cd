package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NewsRanker/internal/app"
	"NewsRanker/internal/config"
	"NewsRanker/internal/domain"
	"NewsRanker/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("newsranker", flag.ContinueOnError)
	flags.SetOutput(stderr)
	query := flags.String("query", "", "search query (defaults to scheduler.query)")
	strategy := flags.String("strategy", "", "ranking strategy: market_importance or sentiment")
	limit := flags.Int("limit", -1, "number of results to print; 0 prints all, -1 uses ranking.limit")
	schedule := flags.Bool("schedule", false, "run on scheduler.cronExpression until interrupted")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	logger := logging.NewWithWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build application", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	if *schedule {
		sink := func(trigger time.Time, ranked []domain.ScoredArticle) {
			if err := writeJSON(stdout, ranked); err != nil {
				logger.Error("write results", "trigger", trigger, "error", err)
			}
		}
		if err := application.Schedule(ctx, *query, *strategy, *limit, sink); err != nil {
			logger.Error("scheduler stopped", "error", err)
			return 1
		}
		return 0
	}

	ranked, err := application.RankOnce(ctx, *query, *strategy, *limit)
	if err != nil {
		logger.Error("ranking failed", slog.Any("error", err))
		return 1
	}
	if err := writeJSON(stdout, ranked); err != nil {
		logger.Error("write results", "error", err)
		return 1
	}
	return 0
}

func writeJSON(w io.Writer, ranked []domain.ScoredArticle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ranked)
}
