// Package httpapi exposes the pipeline over HTTP: authenticated account
// endpoints plus the automation and inbound-email webhooks.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/subhanali/invoice-summarizer/internal/auth"
	"github.com/subhanali/invoice-summarizer/internal/config"
	"github.com/subhanali/invoice-summarizer/internal/export"
	"github.com/subhanali/invoice-summarizer/internal/ingest"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"github.com/subhanali/invoice-summarizer/internal/service"
	"github.com/subhanali/invoice-summarizer/internal/storage"
	"go.uber.org/zap"
)

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Verifier     *auth.Verifier
	Orchestrator *ingest.Orchestrator
	Invoices     *service.InvoiceService
	Notifier     *service.Notifier
	Quota        *service.QuotaService
	Export       *export.Service
	Store        storage.Store

	// InvoiceRepo and HistoryRepo back the webhook triggers, which run
	// with service-role access instead of a bearer token.
	InvoiceRepo *repository.InvoiceRepository
	HistoryRepo *repository.EmailHistoryRepository

	WebhookSecret string
	Logger        *zap.Logger
}

// Server is the HTTP server for the invoice API.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer creates the server and registers all routes.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))
	router.Use(corsMiddleware())

	h := &handlers{deps: deps}
	registerRoutes(router, h)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		router: router,
		logger: deps.Logger,
	}
}

func registerRoutes(router *gin.Engine, h *handlers) {
	router.GET("/health", h.health)

	api := router.Group("/api")
	{
		authed := api.Group("")
		authed.Use(requireAuth(h.deps.Verifier))
		{
			authed.POST("/summarize", h.summarize)
			authed.GET("/summarize", h.getSummary)
			authed.POST("/email", h.sendSummaryEmail)
			authed.POST("/invoices/upload", h.uploadInvoices)
			authed.GET("/invoices", h.listInvoices)
			authed.GET("/quota", h.quotaStatus)
			authed.GET("/export", h.exportInvoices)
		}

		webhooks := api.Group("/webhook")
		webhooks.Use(requireWebhookSecret(h.deps.WebhookSecret))
		{
			webhooks.GET("/n8n", h.webhookPing)
			webhooks.POST("/n8n", h.processWebhook)
			webhooks.POST("/process-invoice-email", h.processInvoiceEmail)
		}
	}
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
