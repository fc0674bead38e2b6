package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "cryptolend-backend/internal/adapter/http"
	"cryptolend-backend/internal/adapter/middleware"
	"cryptolend-backend/internal/adapter/repository/mysql"
	"cryptolend-backend/internal/config"
	"cryptolend-backend/internal/infrastructure/cache"
	"cryptolend-backend/internal/infrastructure/db"
	appUC "cryptolend-backend/internal/usecase/application"
	loanUC "cryptolend-backend/internal/usecase/loan"
	offerUC "cryptolend-backend/internal/usecase/offer"
	"cryptolend-backend/internal/worker"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("config")
	}
	if !cfg.Production() {
		log.SetLevel(logrus.DebugLevel)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), cfg.Production(), log)
	if err != nil {
		log.WithError(err).Fatal("mysql")
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis")
	}

	// repositories + unit of work
	offers := mysql.NewOfferRepository(gdb)
	apps := mysql.NewApplicationRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	currencies := mysql.NewCurrencyRepository(gdb)
	policies := mysql.NewPolicyRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	// usecases
	offerUsecase := offerUC.NewUsecase(offers, currencies, policies, uow)
	appUsecase := appUC.NewUsecase(apps, offers, currencies, policies, uow)
	loanUsecase := loanUC.NewUsecase(loans, currencies, policies, uow)

	// handlers
	h := httpadp.NewHandler()
	offerHandler := httpadp.NewOfferHandler(offerUsecase)
	appHandler := httpadp.NewApplicationHandler(appUsecase)
	loanHandler := httpadp.NewLoanHandler(loanUsecase)
	eventHandler := httpadp.NewEventHandler(offerUsecase, appUsecase, loanUsecase, rdb, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", h.Health)

	idem := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log)

	offersGrp := e.Group("/offers")
	offersGrp.GET("", offerHandler.ListOffers)
	offersGrp.GET("/:offer_id", offerHandler.GetOffer)
	offersGrp.POST("", offerHandler.CreateOffer, idem)
	offersGrp.POST("/:offer_id/close", offerHandler.CloseOffer, idem)

	appsGrp := e.Group("/applications")
	appsGrp.GET("", appHandler.ListApplications)
	appsGrp.POST("", appHandler.CreateApplication, idem)
	appsGrp.POST("/:application_id/cancel", appHandler.CancelApplication, idem)

	loansGrp := e.Group("/loans")
	loansGrp.GET("", loanHandler.ListLoans)
	loansGrp.GET("/:loan_id", loanHandler.GetLoan)
	loansGrp.GET("/:loan_id/early-liquidation/estimate", loanHandler.EstimateEarlyLiquidation)
	loansGrp.POST("/:loan_id/early-liquidation", loanHandler.RequestEarlyLiquidation, idem)
	loansGrp.GET("/:loan_id/early-repayment/estimate", loanHandler.EstimateEarlyRepayment)
	loansGrp.POST("/:loan_id/early-repayment", loanHandler.RequestEarlyRepayment, idem)

	// webhooks from the payment/settlement collaborators
	events := e.Group("/internal/events")
	events.POST("/invoice-paid", eventHandler.InvoicePaid)
	events.POST("/loan-disbursed", eventHandler.LoanDisbursed)
	events.POST("/exit-settled", eventHandler.ExitSettled)

	// operator actions
	e.POST("/internal/loans/:loan_id/default", loanHandler.MarkDefaulted, idem)

	// passive expiry / maturity sweeps
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sweeper := worker.NewSweeper(offerUsecase, loanUsecase, cfg.SweepInterval, cfg.SweepBatch, log)
	go sweeper.Run(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	addr := ":" + cfg.AppPort
	log.WithField("addr", addr).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Info("server stopped")
	}
}
