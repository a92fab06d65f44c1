package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/automation"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/config"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/document"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/extraction"
	httpapi "github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/interfaces/http"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/pipeline"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/report"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/risk"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/pkg/utils"
)

func main() {
	// Load .env if present so local runs pick up GEMINI_API_KEY and
	// N8N_WEBHOOK_URL without exporting them
	_ = gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Invoice Document Orchestrator",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize pipeline stages
	documents := document.NewExtractor(logger)

	extractor, err := extraction.NewClient(extraction.Config{
		APIKey:           cfg.LLM.APIKey,
		BaseURL:          cfg.LLM.BaseURL,
		Model:            cfg.LLM.Model,
		MaxTokens:        cfg.LLM.MaxTokens,
		Timeout:          cfg.LLM.Timeout,
		MaxDocumentChars: cfg.LLM.MaxDocumentChars,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize extraction client", zap.Error(err))
	}

	classifier := risk.NewClassifier(risk.Thresholds{
		HighAbove:  decimal.NewFromFloat(cfg.Risk.HighAbove),
		MediumFrom: decimal.NewFromFloat(cfg.Risk.MediumFrom),
	})

	dispatcher := automation.NewWebhookDispatcher(automation.WebhookConfig{
		WebhookURL:       cfg.Automation.WebhookURL,
		Timeout:          cfg.Automation.Timeout,
		MaxDocumentChars: cfg.Automation.MaxDocumentChars,
	}, logger)
	if cfg.Automation.WebhookURL == "" {
		logger.Warn("N8N_WEBHOOK_URL not set, high-risk alerts will fail until configured")
	}

	pipe := pipeline.New(documents, extractor, classifier, dispatcher, logger)
	reports := report.NewWriter(cfg.Report.SheetName, logger)

	// Initialize HTTP server
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, pipe, dispatcher, reports, logger)

	// Cancel the server context on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		logger.Info("Shutting down server...", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
