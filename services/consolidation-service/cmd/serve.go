package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pkgkafka "github.com/Tanmoy095/VaultShip/pkg/kafka"
	"github.com/Tanmoy095/VaultShip/pkg/logger"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/config"
	httphandler "github.com/Tanmoy095/VaultShip/services/consolidation-service/handler/http"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/estimator"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/events"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/orders"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/ratecard"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/service"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/store"
	sharedkafka "github.com/Tanmoy095/VaultShip/shared/kafka"
	"github.com/Tanmoy095/VaultShip/shared/rabbitmq"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the checkout HTTP API, gRPC health and the weight listener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

// closers run in reverse order on shutdown.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) closeAll(log *logger.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			log.Warn("close failed", "error", err)
		}
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	var cleanup closers
	defer cleanup.closeAll(log)

	var pg *store.PostgresStore
	openPostgres := func() (*store.PostgresStore, error) {
		if pg != nil {
			return pg, nil
		}
		s, err := store.NewPostgresStore(cfg.GetDBURL())
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		cleanup.add(s.Close)
		pg = s
		return s, nil
	}

	var estimates store.EstimateStore
	switch cfg.EstimateStore {
	case config.StoreRedis:
		rs, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.EstimateTTL)
		if err != nil {
			return err
		}
		cleanup.add(rs.Close)
		estimates = rs
	case config.StorePostgres:
		s, err := openPostgres()
		if err != nil {
			return err
		}
		estimates = s
	default:
		estimates = store.NewMemoryStore()
	}

	var rates ratecard.Source
	if cfg.RateSource == config.RateSourcePostgres {
		s, err := openPostgres()
		if err != nil {
			return err
		}
		rates = s
	} else {
		rates = ratecard.NewPricingClient(cfg.PricingServiceURL, cfg.PricingTimeout, cfg.DefaultCurrency)
	}

	mq, err := rabbitmq.NewClient(cfg.GetRabbitMQURL())
	if err != nil {
		return err
	}
	cleanup.add(mq.Close)
	if err := mq.CreateQueue(cfg.OrderQueue); err != nil {
		return err
	}

	deps := service.Dependencies{
		Rates:       rates,
		Store:       estimates,
		Estimator:   estimator.New(decimal.NewFromFloat(cfg.PlatformFeeRate)),
		Orders:      orders.NewSubmitter(mq, cfg.OrderQueue, log),
		Log:         log,
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
	}

	var consumer *sharedkafka.Consumer
	if cfg.KafkaBroker != "" {
		producer := pkgkafka.NewKafkaProducer(cfg.KafkaBroker, cfg.EventsTopic, log)
		cleanup.add(producer.Close)
		deps.Events = events.NewPublisher(producer, log)

		consumer = sharedkafka.NewConsumer([]string{cfg.KafkaBroker}, cfg.WeightEventsTopic, cfg.KafkaGroup, log)
		cleanup.add(consumer.Close)
	} else {
		log.Warn("KAFKA_BROKER not set; events and weight updates are disabled")
	}

	svc := service.NewCheckoutService(deps)
	router := httphandler.NewRouter(httphandler.NewCheckoutHandler(svc, log), log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.HTTPAddr, "estimate_store", cfg.EstimateStore, "rate_source", cfg.RateSource)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		log.Info("grpc health server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	if consumer != nil {
		g.Go(func() error {
			err := consumer.Start(gctx, events.WeightUpdateHandler(svc, log))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		healthServer.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	return g.Wait()
}
