package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subhanali/invoice-summarizer/internal/ai"
	"github.com/subhanali/invoice-summarizer/internal/auth"
	"github.com/subhanali/invoice-summarizer/internal/config"
	"github.com/subhanali/invoice-summarizer/internal/email"
	"github.com/subhanali/invoice-summarizer/internal/export"
	"github.com/subhanali/invoice-summarizer/internal/httpapi"
	"github.com/subhanali/invoice-summarizer/internal/ingest"
	"github.com/subhanali/invoice-summarizer/internal/pdftext"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"github.com/subhanali/invoice-summarizer/internal/service"
	"github.com/subhanali/invoice-summarizer/internal/storage"
	"github.com/subhanali/invoice-summarizer/pkg/database"
	"github.com/subhanali/invoice-summarizer/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	clientRepo := repository.NewClientRepository(db, logger)
	profileRepo := repository.NewProfileRepository(db, logger)
	historyRepo := repository.NewEmailHistoryRepository(db, logger)

	store := storage.NewLocalStore(
		cfg.Storage.BaseDir,
		cfg.Storage.PublicBaseURL,
		cfg.Storage.DownloadTimeout,
		logger,
	)

	completer := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Timeout)
	extractor := ai.NewExtractor(completer, logger)
	textExtractor := pdftext.NewExtractor(logger)

	reconciler := service.NewReconciler(clientRepo, logger)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, reconciler, store, textExtractor, extractor, logger)
	orchestrator := ingest.NewOrchestrator(invoiceSvc, reconciler, logger)

	transport := email.NewSMTPTransport(email.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		SenderName: cfg.SMTP.SenderName,
	}, logger)
	notifier := service.NewNotifier(invoiceRepo, profileRepo, historyRepo, transport, logger)

	quota := service.NewQuotaService(profileRepo, invoiceRepo, service.QuotaLimits{
		Uploads:   cfg.Quota.UploadsLimit,
		Emails:    cfg.Quota.EmailsLimit,
		ResetDays: cfg.Quota.ResetDays,
	}, logger)

	server := httpapi.NewServer(cfg.Server, httpapi.Deps{
		Verifier:      auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Orchestrator:  orchestrator,
		Invoices:      invoiceSvc,
		Notifier:      notifier,
		Quota:         quota,
		Export:        export.NewService(invoiceRepo, logger),
		Store:         store,
		InvoiceRepo:   invoiceRepo,
		HistoryRepo:   historyRepo,
		WebhookSecret: cfg.Webhook.SharedSecret,
		Logger:        logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
