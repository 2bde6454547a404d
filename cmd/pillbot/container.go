// cmd/pillbot/container.go
//
// Root composition root. Owns infrastructure (file system, document store)
// and wires AI providers into the pipeline. This is the only place that
// knows about ALL modules.
package main

import (
	"context"
	"os"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/extract"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm/providers/llmanthropic"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm/providers/llmgemini"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/llm/providers/llmopenai"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/ocr"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/ocr/ocrmistral"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/parse"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/parse/llamaparse"
	"github.com/Nawaf-TBE/Pillbot/pkg/config"
	"github.com/Nawaf-TBE/Pillbot/pkg/formx"
	"github.com/Nawaf-TBE/Pillbot/pkg/fsx"
	"github.com/Nawaf-TBE/Pillbot/pkg/fsx/fsxlocal"
	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
	"github.com/Nawaf-TBE/Pillbot/pkg/pipeline"
	"github.com/Nawaf-TBE/Pillbot/pkg/store"
)

// Container holds shared infrastructure and the composed pipeline.
type Container struct {
	Config *config.Config

	// Infrastructure
	FileSystem fsx.FileSystem
	Store      *store.DocumentStore

	// AI providers
	LLM        llm.Client
	Recognizer ocr.TextRecognizer
	Parser     parse.DocumentParser

	// Pipeline modules
	Extractor *extract.Extractor
	Loader    *formx.Loader
	Populator *formx.Populator
	Pipeline  *pipeline.Pipeline
}

func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure(ctx)
	c.initProviders(ctx)
	c.initPipeline()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — file storage, document store
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure(ctx context.Context) {
	logx.Info("🏗️ Initializing infrastructure...")

	dataFS, err := fsxlocal.NewLocalFileSystem(c.Config.Store.DataDir)
	if err != nil {
		logx.Fatalf("Failed to initialize data directory: %v", err)
	}
	c.FileSystem = dataFS
	c.Store = store.NewDocumentStore(dataFS)
	logx.Infof("  ✅ Document store configured (path: %s)", c.Config.Store.DataDir)

	schemaFS, err := fsxlocal.NewLocalFileSystem(c.Config.Pipeline.SchemaDir)
	if err != nil {
		logx.Fatalf("Failed to initialize schema directory: %v", err)
	}
	c.Loader = formx.NewLoader(schemaFS, ".")
	logx.Infof("  ✅ Schema loader configured (path: %s)", c.Config.Pipeline.SchemaDir)
}

// ---------------------------------------------------------------------------
// AI providers — LLM, OCR, document parsing
// ---------------------------------------------------------------------------

func (c *Container) initProviders(ctx context.Context) {
	logx.Info("🤖 Initializing AI providers...")

	c.LLM = c.buildLLMClient(ctx)
	logx.Infof("  ✅ LLM provider configured (%s, model: %s)", c.Config.LLM.Provider, c.Config.LLM.Model)

	if c.Config.OCR.APIKey != "" {
		recognizer, err := ocrmistral.NewMistralProvider(
			c.Config.OCR.APIKey,
			ocrmistral.WithBaseURL(c.Config.OCR.BaseURL),
			ocrmistral.WithDefaultModel(c.Config.OCR.Model),
			ocrmistral.WithTimeout(c.Config.OCR.Timeout),
			ocrmistral.WithMaxRetries(c.Config.OCR.MaxRetries),
		)
		if err != nil {
			logx.Fatalf("Failed to initialize OCR provider: %v", err)
		}
		c.Recognizer = recognizer
		logx.Info("  ✅ OCR provider configured")
	} else {
		logx.Warn("  ⚠️ MISTRAL_API_KEY not set, OCR stage will be skipped")
	}

	if c.Config.Parse.APIKey != "" {
		parser, err := llamaparse.NewLlamaParseProvider(
			c.Config.Parse.APIKey,
			llamaparse.WithBaseURL(c.Config.Parse.BaseURL),
			llamaparse.WithPollInterval(c.Config.Parse.PollInterval),
			llamaparse.WithMaxPollAttempts(c.Config.Parse.MaxPolls),
		)
		if err != nil {
			logx.Fatalf("Failed to initialize parsing provider: %v", err)
		}
		c.Parser = parser
		logx.Info("  ✅ Parsing provider configured")
	} else {
		logx.Warn("  ⚠️ LLAMAPARSE_API_KEY not set, parsing stage will be skipped")
	}
}

func (c *Container) buildLLMClient(ctx context.Context) llm.Client {
	cfg := c.Config.LLM
	if cfg.APIKey == "" {
		logx.Fatalf("No API key configured for LLM provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case config.LLMProviderOpenAI:
		return llmopenai.NewOpenAIProvider(cfg.APIKey, llmopenai.WithDefaultModel(cfg.Model))
	case config.LLMProviderAnthropic:
		return llmanthropic.NewAnthropicProvider(cfg.APIKey, llmanthropic.WithDefaultModel(cfg.Model))
	case config.LLMProviderGemini:
		client, err := llmgemini.NewGeminiProvider(ctx, cfg.APIKey, llmgemini.WithDefaultModel(cfg.Model))
		if err != nil {
			logx.Fatalf("Failed to initialize Gemini provider: %v", err)
		}
		return client
	default:
		logx.Fatalf("Unknown LLM_PROVIDER: %s (use 'gemini', 'openai' or 'anthropic')", cfg.Provider)
		return nil
	}
}

// ---------------------------------------------------------------------------
// Module composition — extraction and form population feed the pipeline
// ---------------------------------------------------------------------------

func (c *Container) initPipeline() {
	logx.Info("📦 Initializing pipeline...")

	cfg := c.Config.LLM

	c.Extractor = extract.NewExtractor(c.LLM,
		extract.WithModel(cfg.Model),
		extract.WithTemperature(float32(cfg.Temperature)),
		extract.WithMaxTokens(cfg.MaxOutputTokens),
	)

	adapter := formx.NewInferenceAdapter(c.LLM,
		formx.WithModel(cfg.Model),
		formx.WithTemperature(float32(cfg.Temperature)),
		formx.WithTimeout(cfg.Timeout),
		formx.WithConcurrency(c.Config.Pipeline.InferenceConcurrency),
	)
	c.Populator = formx.NewPopulator(adapter)

	opts := []pipeline.Option{
		pipeline.WithDefaultSchema(c.Config.Pipeline.DefaultSchema),
	}
	if c.Recognizer != nil {
		opts = append(opts, pipeline.WithOCR(c.Recognizer))
	}
	if c.Parser != nil {
		opts = append(opts, pipeline.WithParser(c.Parser))
	}

	c.Pipeline = pipeline.New(c.Extractor, c.Loader, c.Populator, c.Store, opts...)
	logx.Info("  ✅ Pipeline assembled")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
