package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"plantify/config"
	"plantify/internal/container"
	"plantify/internal/infrastructure/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd().ExecuteContext(ctx)
	logger.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plantify",
		Short:         "Identify plants from a single photo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(identifyCmd(), captureCmd(), watchCmd(), botCmd())
	return cmd
}

// bootstrap загружает конфигурацию, настраивает логгер и собирает зависимости.
// Без ключа API запуск невозможен.
func bootstrap(ctx context.Context, opts container.Options) (*config.Config, *container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.Logging.Level,
		Pretty:     cfg.Logging.Pretty,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	c, err := container.New(ctx, cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	return cfg, c, nil
}
