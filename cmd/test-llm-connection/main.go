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

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/extraction"
)

const sampleInvoice = `INVOICE

Globex Corporation
123 Industrial Way, Springfield

Invoice Number: INV-2024-0042
Invoice Date: 2024-03-01
Payment Terms: Net 30
Due Date: 2024-03-31

Description                          Amount
Industrial-grade flux capacitors    $58,000.00
Expedited shipping                   $3,250.00

TOTAL DUE: $61,250.00
`

func main() {
	// Parse command line flags
	apiKey := flag.String("key", "", "Gemini API key (or set GEMINI_API_KEY env var)")
	baseURL := flag.String("base-url", "", "OpenAI-compatible endpoint (default: Gemini)")
	model := flag.String("model", extraction.DefaultModel, "Model to query")
	question := flag.String("question", "What is the payment deadline?", "Question to ask about the sample invoice")
	timeout := flag.Duration("timeout", 60*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	_ = gotenv.Load()

	// Initialize logger
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

	// Get API key from flag or environment
	if *apiKey == "" {
		*apiKey = os.Getenv("GEMINI_API_KEY")
	}

	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: GEMINI_API_KEY not set and no --key flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: test-llm-connection --key ... [--model gemini-2.0-flash] [--timeout 60s]\n")
		os.Exit(1)
	}

	fmt.Println("=== Structured Extraction Connection Test ===")

	// Diagnostic info
	fmt.Println("Configuration:")
	fmt.Printf("  Model: %s\n", *model)
	fmt.Printf("  API key length: %d chars\n", len(*apiKey))
	if len(*apiKey) >= 4 {
		fmt.Printf("  API key prefix: %s...\n", (*apiKey)[:4])
	}
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Println()

	// Create extraction client
	fmt.Println("Initializing extraction client...")
	client, err := extraction.NewClient(extraction.Config{
		APIKey:  *apiKey,
		BaseURL: *baseURL,
		Model:   *model,
		Timeout: *timeout,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to initialize client: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Extraction client initialized")
	fmt.Println()

	fmt.Println("Sample Invoice:")
	fmt.Print(sampleInvoice + "\n")

	// Make API call with timeout
	fmt.Println("Sending extraction request...")
	fmt.Printf("Question: %s\n", *question)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	startTime := time.Now()
	result, err := client.Extract(ctx, extraction.Input{
		DocumentText: sampleInvoice,
		Question:     *question,
	})
	duration := time.Since(startTime)

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ ERROR: Extraction call failed\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "Possible causes:\n")
		fmt.Fprintf(os.Stderr, "  1. Invalid or expired GEMINI_API_KEY\n")
		fmt.Fprintf(os.Stderr, "  2. Network connectivity issue\n")
		fmt.Fprintf(os.Stderr, "  3. API quota exceeded\n")
		fmt.Fprintf(os.Stderr, "  4. API service unavailable\n")
		os.Exit(1)
	}

	fmt.Println("✓ Received structured response!")
	fmt.Printf("API Response Time: %v\n", duration)
	fmt.Println()

	// Display results
	fmt.Println("=== Extraction Result ===")
	for _, nf := range result.Record.Fields() {
		if nf.Field == nil {
			fmt.Printf("%-16s (not found)\n", nf.Name+":")
			continue
		}
		fmt.Printf("%-16s %s (confidence %.2f)\n", nf.Name+":", nf.Field.Value, nf.Field.Confidence)
	}
	fmt.Printf("\nSummary: %s\n", result.Summary)
	if result.Answer != "" {
		fmt.Printf("Answer: %s\n", result.Answer)
	}

	// Show JSON response
	fmt.Println("\n=== Full Response (JSON) ===")
	jsonBytes, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(jsonBytes))

	fmt.Println("\n✅ Extraction Connection Test PASSED!")
	os.Exit(0)
}
