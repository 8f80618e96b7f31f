// Command refresh fetches today's NBA player-points props, scores them
// against the trained model and prints the top edges.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"nba_props/refresh/internal/client"
	"nba_props/refresh/internal/config"
	"nba_props/refresh/internal/logging"
	"nba_props/refresh/internal/metrics"
	"nba_props/refresh/internal/notify"
	"nba_props/refresh/internal/pipeline"
)

const metricsJob = "nba_props_refresh"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "", "log level ("+strings.Join(config.ValidLogLevels, ", ")+"); overrides LOG_LEVEL")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger, runID := logging.New(logging.Options{
		Level:   cfg.Level(),
		Pretty:  cfg.IsDevelopment(),
		LogFile: cfg.LogFile,
		Out:     stderr,
	})
	logger.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Starting NBA props refresh")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Warn().Msg("Received shutdown signal, aborting run...")
			cancel()
		case <-ctx.Done():
		}
	}()

	oddsClient := client.NewClient(client.Options{
		BaseURL:           cfg.OddsBaseURL,
		APIKey:            cfg.OddsAPIKey,
		Sport:             cfg.OddsSport,
		Timeout:           cfg.OddsTimeout,
		RequestsPerSecond: cfg.OddsRequestsPerSecond,
		Logger:            logger,
	})

	sinks, closeSinks := buildSinks(ctx, cfg, logger)
	defer closeSinks()

	_, err = pipeline.New(cfg, oddsClient, sinks, stdout, logger).Run(ctx)

	if cfg.PushgatewayURL != "" {
		if pushErr := metrics.Push(cfg.PushgatewayURL, metricsJob); pushErr != nil {
			logger.Warn().Err(pushErr).Str("run_id", runID).Msg("Failed to push metrics")
		}
	}

	if err != nil {
		logger.Error().
			Err(err).
			Str("kind", pipeline.ErrorKind(err)).
			Bool("retryable", pipeline.Retryable(err)).
			Msg("Refresh failed")
		fmt.Fprintf(stderr, "refresh failed: %v\n", err)
		return 1
	}

	return 0
}

// buildSinks connects the optional result sinks. A sink that cannot be
// reached is logged and left out.
func buildSinks(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*notify.Dispatcher, func()) {
	if !cfg.NotifyEnabled() {
		logger.Debug().Msg("No result sinks configured")
		return notify.NewDispatcher(logger), func() {}
	}

	var (
		sinks   []notify.Sink
		closers []func() error
	)

	if cfg.RedisURL != "" {
		sink, closeFn, err := notify.DialRedis(ctx, cfg.RedisURL, cfg.RedisChannel)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable - continuing without pub/sub")
		} else {
			sinks = append(sinks, sink)
			closers = append(closers, closeFn)
			logger.Info().Str("channel", cfg.RedisChannel).Msg("Redis publisher connected")
		}
	}

	if cfg.TelegramBotToken != "" {
		sink, err := notify.DialTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn().Err(err).Msg("Telegram unavailable - continuing without notifications")
		} else {
			sinks = append(sinks, sink)
			logger.Info().Int64("chat_id", cfg.TelegramChatID).Msg("Telegram notifier initialized")
		}
	}

	return notify.NewDispatcher(logger, sinks...), func() {
		for _, c := range closers {
			_ = c()
		}
	}
}
