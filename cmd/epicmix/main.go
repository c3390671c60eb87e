package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"thde.io/epicmix"
	"thde.io/epicmix/internal/config"
	"thde.io/epicmix/internal/logger"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	client, err := epicmix.New(ctx, cfg.Username, cfg.Password,
		epicmix.WithEnvironment(cfg.Environment),
		epicmix.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		epicmix.WithLogger(log),
	)
	if err != nil {
		log.Error("login failed", zap.Error(err))
		os.Exit(1)
	}

	if err := run(ctx, client, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `EpicMix CLI

Usage:
  epicmix lifetime
  epicmix seasons
  epicmix days <seasonTagId>
  epicmix all-days
  epicmix lifts <YYYY-MM-DD>

Environment:
  EPICMIX_USERNAME, EPICMIX_PASSWORD   rider credentials (required)
  EPICMIX_ENV                          environment tag (default PROD)
  EPICMIX_TIMEOUT                      HTTP timeout (default 30s)
  APP_ENV, LOG_LEVEL                   logging (default prod, info)
`)
}

// run executes one command and writes its result to out as indented JSON.
func run(ctx context.Context, client *epicmix.Client, cmd string, args []string, out io.Writer) error {
	var result any

	switch cmd {
	case "lifetime":
		stats, err := client.LifetimeStats(ctx)
		if err != nil {
			return err
		}
		result = stats
	case "seasons":
		stats, err := client.SeasonStats(ctx)
		if err != nil {
			return err
		}
		result = stats
	case "days":
		if len(args) != 1 {
			return errUsage
		}
		seasonTagID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid season tag id %q: %w", args[0], err)
		}
		stats, err := client.DailyStats(ctx, seasonTagID)
		if err != nil {
			return err
		}
		result = stats
	case "all-days":
		days := []epicmix.DayStats{}
		for day, err := range client.AllDailyStats(ctx) {
			if err != nil {
				return err
			}
			days = append(days, day)
		}
		result = days
	case "lifts":
		if len(args) != 1 {
			return errUsage
		}
		day, err := time.Parse(time.DateOnly, args[0])
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", args[0], err)
		}
		rides, err := client.LiftHistory(ctx, epicmix.FormatDate(day))
		if err != nil {
			return err
		}
		result = rides
	default:
		return errUsage
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
