package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/rims/internal/queue"
)

func consumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Append booking events from RabbitMQ to the booking log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.RabbitURL == "" {
				return errors.New("RABBITMQ_URL is not set")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c := &queue.Consumer{
				URL:      cfg.RabbitURL,
				Exchange: cfg.EventsExchange,
				Queue:    cfg.EventsQueue,
				LogPath:  cfg.BookingLogPath,
				Log:      log.WithField("component", "booking-consumer"),
			}
			log.WithField("path", cfg.BookingLogPath).Info("booking consumer started")
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("booking consumer stopped")
			return nil
		},
	}
}
