package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "wallet-escrow-service/docs"
	"wallet-escrow-service/internal/broker"
	"wallet-escrow-service/internal/cache"
	"wallet-escrow-service/internal/config"
	"wallet-escrow-service/internal/database"
	"wallet-escrow-service/internal/locks"
	"wallet-escrow-service/internal/repositories/kafkarepo"
	"wallet-escrow-service/internal/repositories/postgresrepo"
	"wallet-escrow-service/internal/repositories/redisrepo"
	"wallet-escrow-service/internal/services"
	"wallet-escrow-service/internal/transport/http/handler"
	"wallet-escrow-service/internal/transport/ws"

	"github.com/sirupsen/logrus"
)

type App struct {
	cfg            *config.Config
	httpServer     *http.Server
	biddingService *services.BiddingService
}

// @title Wallet Escrow API
// @version 1.0
// @description Wallet ledger and auction escrow engine for a marketplace.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func New() (*App, error) {
	a := new(App)

	// Initialize config
	a.cfg = config.New()

	// Connect to database
	db, err := database.NewPostgres(a.cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	// Connect to cache
	redis, err := cache.NewRedis(a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("cache connection error: %w", err)
	}

	// Connect to broker
	kafka, err := broker.NewKafkaWriter(a.cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("broker connection error: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(db)
	balanceCache := redisrepo.NewBalanceCache(redis)
	idempotencyStore := redisrepo.NewIdempotencyStore(redis)
	eventRepo := kafkarepo.NewEventRepository(kafka)

	// Initialize in-process locks
	walletLocks := locks.NewKeyedMutex(a.cfg.Locks.AcquireTimeout)
	productLocks := locks.NewKeyedMutex(a.cfg.Locks.AcquireTimeout)

	// Initialize services
	balanceService := services.NewBalanceService(store, balanceCache)
	escrowService := services.NewEscrowService(balanceService)
	settlementService := services.NewSettlementService(store, balanceService, escrowService, eventRepo, walletLocks, a.cfg.Fees)
	walletService := services.NewWalletService(store, balanceService, eventRepo, walletLocks)

	bidFeed := ws.NewBidFeed()
	a.biddingService = services.NewBiddingService(store, balanceService, escrowService, settlementService, eventRepo, productLocks, bidFeed)

	// Initialize mux and handlers
	mux := http.NewServeMux()

	auth := handler.NewAuth(a.cfg.Auth.JWTSecret)
	idem := handler.NewIdempotent(idempotencyStore)

	handler.NewWallet(mux, walletService, auth, idem)
	handler.NewAuction(mux, a.biddingService, settlementService, auth, idem)

	mux.HandleFunc("GET /ws/products/{productId}/bids", bidFeed.HandleConnection)

	// Initialize http server
	a.httpServer = &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	go a.biddingService.RunAuctionSweeper(ctx, a.cfg.Worker.SweepInterval)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("http server shutdown error")
		}
	}()

	logrus.WithField("port", a.cfg.Server.Port).Info("starting HTTP server")
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
