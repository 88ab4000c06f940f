package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/flicky/storefront-api/internal/events"
	"github.com/flicky/storefront-api/internal/handler"
	"github.com/flicky/storefront-api/internal/metrics"
	"github.com/flicky/storefront-api/internal/payment"
	"github.com/flicky/storefront-api/internal/repository"
	"github.com/flicky/storefront-api/internal/service"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func runServe(parent context.Context, migrate bool) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otel.SetTextMapPropagator(propagation.TraceContext{})

	dbPool, err := connectPostgres(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if migrate {
		applied, err := repository.Migrate(ctx, dbPool)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			log.Info("applied migrations", "migrations", applied)
		}
	}

	redisClient, err := connectRedis(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	checks := map[string]handler.Check{
		"postgres": dbPool.Ping,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}

	// The broker is optional for the API: without it events are dropped.
	var publisher events.Publisher = events.Nop{}
	amqpConn, amqpCh, err := connectRabbitMQ(cfg.RabbitMQ.URL, log)
	if err != nil {
		log.Warn("order events disabled", "error", err)
	} else {
		defer amqpConn.Close()
		defer amqpCh.Close()
		if err := events.DeclareExchange(amqpCh); err != nil {
			return err
		}
		publisher = events.NewAMQPPublisher(amqpCh)
		checks["rabbitmq"] = rabbitCheck(amqpConn)
	}

	var processor payment.Processor
	if cfg.Payment.StripeEnabled() {
		processor = payment.NewStripeProcessor(cfg.Payment.StripeKey, cfg.Payment.WebhookSecret)
	}
	log.Info("payment mode", "mode", cfg.Payment.Mode)

	store := repository.NewStore(dbPool)

	authSvc := service.NewAuthService(store.Users(), cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(store.Products(), redisClient)
	cartSvc := service.NewCartService(store.Cart(), store.Products())
	orderSvc := service.NewOrderService(store, publisher, m)
	paymentSvc := service.NewPaymentService(store, processor, redisClient, publisher, m, nil, cfg.Payment.Currency)
	analyticsSvc := service.NewAnalyticsService(redisClient)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		JWTSecret:      cfg.JWT.Secret,
		Users:          store.Users(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         log,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Product:   handler.NewProductHandler(productSvc),
		Cart:      handler.NewCartHandler(cartSvc),
		Order:     handler.NewOrderHandler(orderSvc),
		Payment:   handler.NewPaymentHandler(paymentSvc),
		Analytics: handler.NewAnalyticsHandler(analyticsSvc),
		Health:    handler.NewHealthHandler(checks),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	log.Info("server stopped")
	return nil
}

func rabbitCheck(conn *amqp.Connection) handler.Check {
	return func(context.Context) error {
		if conn.IsClosed() {
			return errors.New("connection closed")
		}
		return nil
	}
}
