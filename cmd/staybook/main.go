package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	quoteapp "staybook/internal/app/handlers/quote"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	"staybook/internal/infra/db/postgres"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/outbox"
	"staybook/internal/infra/payments/stripe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	properties := postgres.NewPropertyRepository(db)
	reservations := postgres.NewReservationRepository(db)
	uowFactory := postgres.Factory{DB: db}
	payments := stripe.NewClient(cfg.PaymentAPIBase, cfg.PaymentSecretKey, logger)

	handlers := ginserver.Handlers{
		Availability: ginserver.AvailabilityHandler{
			Query: &availabilityapp.GetAvailabilityHandler{
				Properties:   properties,
				Reservations: reservations,
			},
		},
		Quote: ginserver.QuoteHandler{
			Query: &quoteapp.GetQuoteHandler{Properties: properties},
		},
		Checkout: ginserver.BookingHandler{
			Commands: &bookingapp.CreateBookingHandler{
				UoWFactory:     uowFactory,
				Properties:     properties,
				Payments:       payments,
				BaseURL:        cfg.PublicBaseURL,
				PaymentTimeout: cfg.PaymentTimeout,
				Logger:         logger,
			},
		},
		Payments: ginserver.PaymentsHandler{
			Commands: &bookingapp.ConfirmPaymentHandler{
				UoWFactory: uowFactory,
				Logger:     logger,
			},
			WebhookSecret: cfg.PaymentWebhookSecret,
		},
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: db.Ping,
	}, handlers)

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka producer failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		worker := &outbox.Worker{
			Store:       postgres.NewOutboxStore(db),
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "staybook",
			Backoff:     []time.Duration{time.Second, 5 * time.Second, 30 * time.Second},
			Logger:      logger,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	} else {
		logger.Info("kafka brokers not configured, outbox publishing disabled")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
