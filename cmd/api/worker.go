package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/flicky/storefront-api/internal/metrics"
	"github.com/flicky/storefront-api/internal/service"
	"github.com/flicky/storefront-api/internal/worker"
)

func workerCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume paid-order events into the sales analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			redisClient, err := connectRedis(ctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			conn, ch, err := connectRabbitMQ(cfg.RabbitMQ.URL, log)
			if err != nil {
				return err
			}
			defer conn.Close()
			defer ch.Close()

			if err := worker.SetupRabbitMQ(ch, cfg.Analytics.Queue, cfg.Analytics.Prefetch); err != nil {
				return fmt.Errorf("setup RabbitMQ: %w", err)
			}

			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				srv := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error("metrics server", "error", err)
					}
				}()
				defer srv.Close()
			}

			w := worker.NewAnalyticsWorker(ch, cfg.Analytics.Queue, service.NewAnalyticsService(redisClient), m, log)
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9101", "address for /metrics; empty disables it")
	return cmd
}
