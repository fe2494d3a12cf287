package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vitalmed/loan-ledger/internal/cep"
	"github.com/vitalmed/loan-ledger/internal/config"
	"github.com/vitalmed/loan-ledger/internal/handler"
	"github.com/vitalmed/loan-ledger/internal/repository"
	"github.com/vitalmed/loan-ledger/internal/service"
	"github.com/vitalmed/loan-ledger/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	returnRepo := repository.NewReturnRepository(db)

	ledgerService := service.NewLedgerService(loanRepo, returnRepo, redisClient, cfg)
	cepClient := cep.NewClient(cfg.CEP.BaseURL, cfg.CEPTimeout(), redisClient, cfg.CEPCacheTTL())

	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	exportHandler := handler.NewExportHandler(ledgerService, cfg.Ledger.ExportMaxRows)
	cepHandler := handler.NewCEPHandler(cepClient)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(ledgerHandler, exportHandler, cepHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logrus.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func setupRoutes(
	ledgerHandler *handler.LedgerHandler,
	exportHandler *handler.ExportHandler,
	cepHandler *handler.CEPHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)
	router.Use(handler.ActorMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", ledgerHandler.RecordLoan).Methods("POST")
	api.HandleFunc("/loans", ledgerHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans/export", exportHandler.Export).Methods("GET")
	api.HandleFunc("/loans/{loanId}/returns", ledgerHandler.RecordReturn).Methods("POST")
	api.HandleFunc("/loans/{loanId}/summary", ledgerHandler.GetSummary).Methods("GET")
	api.HandleFunc("/cep/{cep}", cepHandler.Lookup).Methods("GET")

	return router
}
