package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/carelinkvn/carelink-backend/internal/config"
	"github.com/carelinkvn/carelink-backend/internal/db"
	httpHandlers "github.com/carelinkvn/carelink-backend/internal/http/handlers"
	httpRouter "github.com/carelinkvn/carelink-backend/internal/http/router"
	"github.com/carelinkvn/carelink-backend/internal/ledger"
	"github.com/carelinkvn/carelink-backend/internal/logger"
	"github.com/carelinkvn/carelink-backend/internal/mailer"
	"github.com/carelinkvn/carelink-backend/internal/payments"
	"github.com/carelinkvn/carelink-backend/internal/repository"
	"github.com/carelinkvn/carelink-backend/internal/service"
)

func main() {
	// Context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: cannot load configuration: %v", err)
	}

	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Database and migrations.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: cannot connect to database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	// Redis holds the short-lived signing codes.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("main: cannot connect to redis: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	ledgerClient := ledger.NewClient(cfg.LedgerBaseURL, cfg.LedgerTimeout)
	paymentGateway := payments.NewMockGateway()

	// Repositories.
	userRepo := repository.NewUserRepository(dbConn)
	matchingRepo := repository.NewMatchingRepository(dbConn)
	contractRepo := repository.NewContractRepository(dbConn)
	transactionRepo := repository.NewTransactionRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	pricingRepo := repository.NewPricingRepository(dbConn)
	withdrawalRepo := repository.NewWithdrawalRepository(dbConn)

	// Services.
	authService := service.NewAuthService(userRepo, tokenManager)
	otpService := service.NewOtpService(redisClient, smtpMailer, cfg.SignOtpTTL)
	matchingService := service.NewMatchingService(matchingRepo, contractRepo, userRepo)
	transactionService := service.NewTransactionService(
		transactionRepo, contractRepo, pricingRepo, userRepo,
		ledgerClient, paymentGateway, cfg.TokenExchangeRate,
	)
	contractService := service.NewContractService(contractRepo, matchingRepo, transactionService, otpService, userRepo, ledgerClient)
	disputeService := service.NewDisputeService(disputeRepo, transactionRepo, userRepo)
	withdrawalService := service.NewWithdrawalService(withdrawalRepo, userRepo, ledgerClient, cfg.PlatformLedgerAddress, cfg.TokenExchangeRate)

	// HTTP handlers.
	authHandler := httpHandlers.NewAuthHandler(authService)
	matchingHandler := httpHandlers.NewMatchingHandler(matchingService)
	contractHandler := httpHandlers.NewContractHandler(contractService)
	transactionHandler := httpHandlers.NewTransactionHandler(transactionService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	withdrawalHandler := httpHandlers.NewWithdrawalHandler(withdrawalService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, redisClient)

	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		matchingHandler,
		contractHandler,
		transactionHandler,
		disputeHandler,
		withdrawalHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Stop the server when the shutdown signal arrives.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: database close error: %v", err)
	}
}
