package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"supercrm/internal/config"
	"supercrm/internal/document"
	"supercrm/internal/email/noop"
	"supercrm/internal/email/ses"
	"supercrm/internal/handler"
	"supercrm/internal/jobs"
	"supercrm/internal/logger"
	"supercrm/internal/port"
	"supercrm/internal/repository/postgres"
	"supercrm/internal/router"
	"supercrm/internal/service"
	s3storage "supercrm/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	invoiceRepo := postgres.NewInvoiceRepo(db)
	counterpartyRepo := postgres.NewCounterpartyRepo(db)
	transactor := postgres.NewInvoiceTransactor(db)

	// Initialize storage and delivery
	archive, err := s3storage.NewInvoiceArchive(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	mailer, err := newMailer(cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWT)
	counterpartySvc := service.NewCounterpartyService(counterpartyRepo)
	invoiceSvc := service.NewInvoiceService(service.InvoiceServiceDeps{
		InvoiceRepo:      invoiceRepo,
		Transactor:       transactor,
		CounterpartyRepo: counterpartyRepo,
		Storage:          archive,
		Mailer:           mailer,
		Renderer:         document.NewPDFRenderer(),
		Company:          cfg.Company,
		Tax:              cfg.Tax,
		S3:               cfg.S3,
	})

	// Background jobs
	if cfg.Jobs.OverdueEnabled {
		sched, err := jobs.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		if err := sched.RegisterOverdue(invoiceSvc, cfg.Jobs.OverdueInterval); err != nil {
			return fmt.Errorf("failed to register overdue job: %w", err)
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				log.Error().Err(err).Msg("scheduler shutdown failed")
			}
		}()
	}

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	counterpartyH := handler.NewCounterpartyHandler(counterpartySvc)
	taxH := handler.NewTaxHandler(cfg.Company.StateCode)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins, invoiceH, counterpartyH, taxH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newMailer(cfg config.EmailConfig) (port.InvoiceMailer, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESMailer(cfg.Region, cfg.FromAddress, cfg.FromName)
	case "", "noop":
		return noop.NewNoopMailer(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
