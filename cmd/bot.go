package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	telegram "plantify/internal/api"
	"plantify/internal/container"
	"plantify/internal/infrastructure/metrics"
)

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and the metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, c, err := bootstrap(cmd.Context(), container.Options{})
			if err != nil {
				return err
			}
			defer c.Close()
			if cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			metrics.Init()

			bot, err := telegram.NewBot(cfg.TelegramToken, c.IdentificationService)
			if err != nil {
				return fmt.Errorf("create bot: %w", err)
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g, ctx := errgroup.WithContext(runCtx)
			g.Go(func() error {
				log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("metrics server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			g.Go(func() error {
				defer cancel()
				log.Info().Bool("camera", c.IdentificationService.CameraAvailable()).Msg("bot is running")
				return bot.Run(ctx)
			})

			return g.Wait()
		},
	}
}
