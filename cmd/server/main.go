package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/assetledger-backend/internal/adapter/grpc"
	"github.com/simaogato/assetledger-backend/internal/adapter/httpapi"
	"github.com/simaogato/assetledger-backend/internal/app"
	"github.com/simaogato/assetledger-backend/internal/config"
	"github.com/simaogato/assetledger-backend/internal/scheduler"
	"github.com/simaogato/assetledger-backend/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	// 2. Database, repositories, services and seed data
	ctx := context.Background()
	application, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("Database ready, system records seeded")

	// 3. Daily price refresh and valuation
	sched := scheduler.New(cfg.Location, log)
	if err := scheduler.RegisterDailyJobs(sched, cfg.PriceFetchHour, cfg.PriceFetchMinute,
		application.RefreshService, application.ValuationService); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule daily jobs")
	}
	sched.Start()

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.APIToken, grpcadapter.HealthCheckMethod),
		),
	)

	portfolioServer := grpcadapter.NewServer(
		application.GainService,
		application.ValuationService,
		application.DashboardService,
		application.TradeService,
		application.HoldingService,
		application.RefreshService,
	)
	grpcadapter.RegisterPortfolioServer(grpcServer, portfolioServer)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 5. Start HTTP export server
	httpServer := httpapi.New(httpapi.Config{
		Addr:     cfg.HTTPAddr,
		Token:    cfg.APIToken,
		Currency: cfg.BaseCurrency,
		Reports:  application.GainService,
		Log:      log,
	})

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve HTTP server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(log, grpcServer, httpServer, sched)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log zerolog.Logger, grpcServer *grpclib.Server, httpServer *httpapi.Server, sched *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
