package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nawaf-TBE/Pillbot/pkg/config"
	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
	"github.com/Nawaf-TBE/Pillbot/pkg/pipeline"
)

func main() {
	filePath := flag.String("file", "", "path to the document to process")
	schemaName := flag.String("schema", "", "form schema name (defaults to configured schema)")
	outputPath := flag.String("output", "", "write the populated form JSON to this file")
	flag.Parse()

	// 1. Initialize Logger
	logLevel := getEnv("LOG_LEVEL", "info")
	switch logLevel {
	case "debug":
		logx.SetLevel(logx.LevelDebug)
	case "warn":
		logx.SetLevel(logx.LevelWarn)
	case "error":
		logx.SetLevel(logx.LevelError)
	default:
		logx.SetLevel(logx.LevelInfo)
	}

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: pillbot -file <document> [-schema <name>] [-output <path>]")
		os.Exit(2)
	}

	logx.Info("🚀 Starting Pillbot prior-authorization pipeline...")

	// 2. Load configuration and build the container
	cfg := config.Load()
	ctx := context.Background()
	container := NewContainer(ctx, cfg)

	// 3. Read the input document
	data, err := os.ReadFile(*filePath)
	if err != nil {
		logx.Fatalf("Failed to read document: %v", err)
	}

	doc := pipelineDocument(*filePath, data)

	// 4. Run the pipeline
	result, err := container.Pipeline.Run(ctx, doc, *schemaName)
	if err != nil {
		logx.Fatalf("Pipeline failed: %v", err)
	}

	// 5. Report
	logx.Infof("📋 Document ID: %s", result.DocumentID)
	for _, stage := range result.Stages {
		switch stage.Status {
		case pipeline.StatusCompleted:
			logx.Infof("  ✅ %s (%.2fs)", stage.Stage, stage.DurationSeconds)
		case pipeline.StatusSkipped:
			logx.Infof("  ⏭️ %s skipped: %s", stage.Stage, stage.Reason)
		default:
			logx.Infof("  ❌ %s failed: %s", stage.Stage, stage.Reason)
		}
	}

	meta := result.Population.Metadata
	logx.Infof("📊 Form population: %d/%d fields (%.0f%%)",
		meta.PopulatedFields, meta.TotalFields, meta.CompletionRate*100)
	if len(meta.MissingFields) > 0 {
		logx.Warnf("⚠️ Missing required fields: %s", strings.Join(meta.MissingFields, ", "))
	}
	for _, note := range meta.ConditionalNotes {
		logx.Infof("📝 %s", note)
	}

	// 6. Write the populated form
	out, err := json.MarshalIndent(result.Population, "", "  ")
	if err != nil {
		logx.Fatalf("Failed to encode populated form: %v", err)
	}
	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, out, 0o644); err != nil {
			logx.Fatalf("Failed to write output: %v", err)
		}
		logx.Infof("💾 Populated form written to %s", *outputPath)
	} else {
		fmt.Println(string(out))
	}
}

func pipelineDocument(path string, data []byte) pipeline.Document {
	mimeType := "application/pdf"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mimeType = "image/png"
	case ".jpg", ".jpeg":
		mimeType = "image/jpeg"
	case ".txt", ".md":
		mimeType = "text/plain"
	}
	return pipeline.Document{
		Filename: filepath.Base(path),
		MimeType: mimeType,
		Data:     data,
	}
}
