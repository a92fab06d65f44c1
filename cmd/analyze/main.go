package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subosito/gotenv"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/automation"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/config"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/document"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/extraction"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/pipeline"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/report"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/risk"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/pkg/utils"
)

func main() {
	filePath := flag.String("file", "", "Invoice document to analyze (.pdf or .txt)")
	question := flag.String("question", "", "Optional question to ask about the document")
	recipient := flag.String("recipient", "", "Recipient email for high-risk alerts")
	dispatch := flag.Bool("dispatch", false, "Dispatch a webhook alert when the invoice is high risk")
	xlsxPath := flag.String("xlsx", "", "Write an XLSX analysis report to this path")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall processing timeout")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: analyze --file invoice.pdf [--question \"...\"] [--recipient a@b.com --dispatch] [--xlsx out.xlsx]")
		os.Exit(1)
	}

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: "stderr",
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	docType, err := documentTypeFromPath(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", *filePath, err)
		os.Exit(1)
	}

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
		fmt.Fprintf(os.Stderr, "Failed to initialize extraction client: %v\n", err)
		os.Exit(1)
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

	pipe := pipeline.New(documents, extractor, classifier, dispatcher, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := pipe.Process(ctx, pipeline.Request{
		FileName:     filepath.Base(*filePath),
		DocumentType: docType,
		Content:      content,
		Question:     *question,
		Recipient:    *recipient,
		AutoDispatch: *dispatch,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if *xlsxPath != "" {
		writer := report.NewWriter(cfg.Report.SheetName, logger)
		data, err := writer.Build(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build XLSX report: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *xlsxPath, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *xlsxPath)
	}
}

func documentTypeFromPath(path string) (models.DocumentType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return models.DocumentTypePDF, nil
	case ".txt":
		return models.DocumentTypeTXT, nil
	default:
		return "", fmt.Errorf("unsupported file type %q: expected .pdf or .txt", filepath.Ext(path))
	}
}
