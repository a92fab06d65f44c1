package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/automation"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/risk"
)

func main() {
	webhookURL := flag.String("url", "", "n8n webhook URL (or set N8N_WEBHOOK_URL env var)")
	recipient := flag.String("recipient", "ap-team@example.com", "Recipient email for the test alert")
	timeout := flag.Duration("timeout", 30*time.Second, "Webhook call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	_ = gotenv.Load()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *webhookURL == "" {
		*webhookURL = os.Getenv("N8N_WEBHOOK_URL")
	}
	if *webhookURL == "" {
		fmt.Fprintf(os.Stderr, "ERROR: N8N_WEBHOOK_URL not set and no --url flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: test-webhook --url https://... [--recipient a@b.com] [--timeout 30s]\n")
		os.Exit(1)
	}

	fmt.Println("=== Automation Webhook Test ===")
	fmt.Println("This tool sends one sample high-risk alert through the webhook dispatcher")
	fmt.Println()
	fmt.Printf("Recipient: %s\n", *recipient)
	fmt.Printf("Timeout: %v\n", *timeout)
	fmt.Println()

	dispatcher := automation.NewWebhookDispatcher(automation.WebhookConfig{
		WebhookURL: *webhookURL,
		Timeout:    *timeout,
	}, logger)

	alert := automation.AlertRequest{
		FileName: "webhook-test-invoice.pdf",
		Record: &models.InvoiceRecord{
			Vendor:      &models.Field{Value: "Globex Corporation", Confidence: 0.95, Reasoning: "Vendor name on the letterhead."},
			TotalAmount: &models.Field{Value: "61250.00", Confidence: 0.98, Reasoning: "TOTAL DUE line."},
		},
		Summary:   "Test alert: large equipment invoice from Globex Corporation.",
		RiskTier:  risk.TierHigh,
		Recipient: *recipient,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("Dispatching sample high-risk alert...")
	startTime := time.Now()
	result, err := dispatcher.Dispatch(ctx, alert)
	duration := time.Since(startTime)

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ ERROR: Webhook dispatch failed\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if result != nil && result.WebhookStatus != 0 {
			fmt.Fprintf(os.Stderr, "Webhook status: %d\n", result.WebhookStatus)
		}
		os.Exit(1)
	}

	fmt.Println("✓ Webhook accepted the alert!")
	fmt.Printf("Round-trip time: %v\n", duration)
	fmt.Println()

	fmt.Println("=== Dispatch Result ===")
	jsonBytes, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(jsonBytes))

	fmt.Println("\n✅ Automation Webhook Test PASSED!")
	os.Exit(0)
}
