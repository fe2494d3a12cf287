package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/vitalmed/loan-ledger/internal/config"
	"github.com/vitalmed/loan-ledger/internal/repository"
	"github.com/vitalmed/loan-ledger/internal/service"
	"github.com/vitalmed/loan-ledger/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	logrus.Info("Starting ledger scheduler...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

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

	ledgerService := service.NewLedgerService(
		repository.NewLoanRepository(db),
		repository.NewReturnRepository(db),
		redisClient,
		cfg,
	)

	c := cron.New(cron.WithSeconds())

	_, err = c.AddFunc(cfg.Ledger.OverdueScanSchedule, func() {
		runOverdueScan(ledgerService)
	})
	if err != nil {
		logrus.Fatalf("Failed to schedule overdue scan: %v", err)
	}

	c.Start()
	logrus.Info("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down scheduler...")
	c.Stop()
	logrus.Info("Scheduler stopped")
}

func runOverdueScan(ledgerService *service.LedgerService) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	overdue, err := ledgerService.RefreshOverdue(ctx)
	if err != nil {
		logrus.WithError(err).Error("overdue scan failed")
		return
	}

	outstanding := service.TotalOutstanding(overdue)

	logrus.WithFields(logrus.Fields{
		"overdue_loans": len(overdue),
		"outstanding":   utils.FormatUSD(outstanding),
	}).Info("overdue scan finished")

	for _, summary := range overdue {
		logrus.WithFields(logrus.Fields{
			"loan_id":        summary.Loan.ID,
			"process_number": summary.Loan.ProcessNumber,
			"borrower":       summary.Loan.BorrowerName,
			"balance":        summary.Balance.String(),
			"status":         summary.Status,
		}).Warn("loan overdue")
	}
}
