package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/seating-planner/internal/config"
	"github.com/iliyamo/seating-planner/internal/queue"
)

func newConsumeCmd() *cobra.Command {
	var (
		url     string
		logPath string
		level   string
	)
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append session-finalized events from RabbitMQ to the seating audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return fmt.Errorf("--url or RABBITMQ_URL is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := &queue.Consumer{
				URL:     url,
				LogPath: logPath,
				Log:     config.NewLogger(config.LogConfig{Level: level, Format: "text"}),
			}
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", os.Getenv("RABBITMQ_URL"), "AMQP URL (defaults to RABBITMQ_URL)")
	cmd.Flags().StringVar(&logPath, "log-path", "logs/seating.log", "Audit log file")
	cmd.Flags().StringVar(&level, "log-level", "info", "Log level")
	return cmd
}
