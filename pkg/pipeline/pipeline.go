// Package pipeline runs a document through the staged prior-authorization
// workflow: OCR, document parsing, entity extraction, and form population.
// Stage outputs are persisted through the document store as they are
// produced, so partial progress survives a failed run.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/Nawaf-TBE/Pillbot/pkg/ai/extract"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/ocr"
	"github.com/Nawaf-TBE/Pillbot/pkg/ai/parse"
	"github.com/Nawaf-TBE/Pillbot/pkg/formx"
	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
	"github.com/Nawaf-TBE/Pillbot/pkg/store"
)

// Pipeline stage names
const (
	StageOCR        = "ocr_processing"
	StageParsing    = "document_parsing"
	StageExtraction = "entity_extraction"
	StagePopulation = "form_population"
)

// Stage statuses
const (
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Document is the raw input handed to the pipeline
type Document struct {
	Filename string
	MimeType string
	Data     []byte
}

// StageResult records the outcome of a single pipeline stage
type StageResult struct {
	Stage           string  `json:"stage"`
	Status          string  `json:"status"`
	DurationSeconds float64 `json:"duration_seconds"`
	Reason          string  `json:"reason,omitempty"`
}

// Result is the outcome of a full pipeline run
type Result struct {
	DocumentID      string                   `json:"document_id"`
	SchemaName      string                   `json:"schema_name"`
	Stages          []StageResult            `json:"stages"`
	Entities        map[string]any           `json:"entities"`
	Validation      extract.ValidationReport `json:"validation"`
	Population      *formx.PopulationResult  `json:"population"`
	DurationSeconds float64                  `json:"duration_seconds"`
}

// EntityExtractor produces named entities from document text
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, documentContent string) (*extract.Result, error)
}

// SchemaLoader resolves a form schema by name
type SchemaLoader interface {
	Load(ctx context.Context, name string) (*formx.Schema, error)
}

// FormPopulator fills a form from extracted entities
type FormPopulator interface {
	Populate(ctx context.Context, entities map[string]formx.ExtractedEntity, schema *formx.Schema) (*formx.PopulationResult, error)
}

// Pipeline coordinates the document processing stages
type Pipeline struct {
	recognizer    ocr.TextRecognizer
	parser        parse.DocumentParser
	extractor     EntityExtractor
	loader        SchemaLoader
	populator     FormPopulator
	docs          *store.DocumentStore
	defaultSchema string
}

// Option configures optional pipeline collaborators
type Option func(*Pipeline)

// WithOCR enables the OCR stage. Without a recognizer the stage is skipped.
func WithOCR(r ocr.TextRecognizer) Option {
	return func(p *Pipeline) { p.recognizer = r }
}

// WithParser enables the document parsing stage. Without a parser the
// pipeline falls back to OCR output.
func WithParser(dp parse.DocumentParser) Option {
	return func(p *Pipeline) { p.parser = dp }
}

// WithDefaultSchema sets the schema used when Run receives an empty name
func WithDefaultSchema(name string) Option {
	return func(p *Pipeline) { p.defaultSchema = name }
}

// New creates a pipeline. Extractor, loader, populator and store are
// required; OCR and parsing are optional stages.
func New(extractor EntityExtractor, loader SchemaLoader, populator FormPopulator, docs *store.DocumentStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:     extractor,
		loader:        loader,
		populator:     populator,
		docs:          docs,
		defaultSchema: "InsureCo_Ozempic",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one document end to end and returns the populated form
// along with per-stage status. OCR and parsing are non-fatal: a failure
// there records a skipped stage and the pipeline continues on whatever
// text is available. Extraction and population failures abort the run.
func (p *Pipeline) Run(ctx context.Context, doc Document, schemaName string) (*Result, error) {
	if len(doc.Data) == 0 {
		return nil, errorRegistry.New(ErrEmptyDocument)
	}
	if schemaName == "" {
		schemaName = p.defaultSchema
	}

	started := time.Now()
	documentID := store.GenerateDocumentID()
	result := &Result{DocumentID: documentID, SchemaName: schemaName}

	err := p.docs.SaveMetadata(ctx, store.DocumentMetadata{
		DocumentID: documentID,
		Filename:   doc.Filename,
		MimeType:   doc.MimeType,
		SizeBytes:  int64(len(doc.Data)),
		Status:     store.StatusProcessing,
	})
	if err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{
		"document_id": documentID,
		"filename":    doc.Filename,
		"schema":      schemaName,
	}).Info("Pipeline started")

	ocrText := p.runOCR(ctx, doc, result)
	content := p.runParsing(ctx, doc, ocrText, result)
	if strings.TrimSpace(content) == "" {
		runErr := errorRegistry.New(ErrNoContent).WithDetail("document_id", documentID)
		p.markFailed(ctx, documentID, runErr)
		return nil, runErr
	}

	entities, report, err := p.runExtraction(ctx, documentID, content, result)
	if err != nil {
		p.markFailed(ctx, documentID, err)
		return nil, err
	}
	result.Entities = entities
	result.Validation = report

	population, err := p.runPopulation(ctx, documentID, schemaName, entities, report, result)
	if err != nil {
		p.markFailed(ctx, documentID, err)
		return nil, err
	}
	result.Population = population

	result.DurationSeconds = time.Since(started).Seconds()
	if err := p.docs.UpdateStatus(ctx, documentID, store.StatusCompleted, nil); err != nil {
		logx.WithError(err).Warn("Failed to record completed status")
	}

	logx.WithFields(logx.Fields{
		"document_id":      documentID,
		"duration_seconds": result.DurationSeconds,
		"completion_rate":  population.Metadata.CompletionRate,
	}).Info("Pipeline completed")

	return result, nil
}

// runOCR extracts text from the raw document. Returns empty text when the
// stage is skipped.
func (p *Pipeline) runOCR(ctx context.Context, doc Document, result *Result) string {
	start := time.Now()

	if p.recognizer == nil {
		p.record(result, StageOCR, StatusSkipped, start, "OCR provider not configured")
		return ""
	}

	ocrResult, err := p.recognizer.RecognizeText(ctx, ocr.FromBase64(doc.Data, doc.MimeType))
	if err != nil {
		logx.WithError(err).Warn("OCR stage skipped")
		p.record(result, StageOCR, StatusSkipped, start, err.Error())
		return ""
	}

	text := ocrResult.Text()
	if ocrResult.HasMarkdown() {
		text = ocrResult.Markdown()
	}

	p.saveStage(ctx, result.DocumentID, StageOCR, map[string]any{
		"text":       text,
		"page_count": len(ocrResult.Pages()),
	})
	p.record(result, StageOCR, StatusCompleted, start, "")
	return text
}

// runParsing converts the document to markdown, falling back to OCR text
// when the parser is unavailable or fails.
func (p *Pipeline) runParsing(ctx context.Context, doc Document, ocrText string, result *Result) string {
	start := time.Now()

	if p.parser == nil {
		p.record(result, StageParsing, StatusSkipped, start, "parsing provider not configured")
		return ocrText
	}

	parsed, err := p.parser.ParseDocument(ctx, parse.FromBytes(doc.Data, doc.Filename))
	if err != nil {
		logx.WithError(err).Warn("Parsing stage skipped")
		p.record(result, StageParsing, StatusSkipped, start, err.Error())
		return ocrText
	}
	if strings.TrimSpace(parsed.Markdown) == "" {
		p.record(result, StageParsing, StatusSkipped, start, "parser returned no content")
		return ocrText
	}

	p.saveStage(ctx, result.DocumentID, StageParsing, map[string]any{
		"markdown": parsed.Markdown,
		"job_id":   parsed.JobID,
		"stats":    parsed.Stats,
	})
	p.record(result, StageParsing, StatusCompleted, start, "")
	return parsed.Markdown
}

func (p *Pipeline) runExtraction(ctx context.Context, documentID, content string, result *Result) (map[string]any, extract.ValidationReport, error) {
	start := time.Now()

	extracted, err := p.extractor.ExtractEntities(ctx, content)
	if err != nil {
		p.record(result, StageExtraction, StatusFailed, start, err.Error())
		return nil, extract.ValidationReport{}, errorRegistry.NewWithCause(ErrStageFailed, err).
			WithDetail("stage", StageExtraction)
	}

	entities, report := extract.ValidateEntities(extracted.Entities)

	p.saveStage(ctx, documentID, StageExtraction, map[string]any{
		"entities":          entities,
		"validation_report": report,
		"model":             extracted.Model,
	})
	p.record(result, StageExtraction, StatusCompleted, start, "")

	logx.WithFields(logx.Fields{
		"document_id":      documentID,
		"populated_fields": report.PopulatedFields,
		"total_fields":     report.TotalFields,
		"confidence":       report.ConfidenceScore,
	}).Info("Entity extraction completed")

	return entities, report, nil
}

func (p *Pipeline) runPopulation(ctx context.Context, documentID, schemaName string, entities map[string]any, report extract.ValidationReport, result *Result) (*formx.PopulationResult, error) {
	start := time.Now()

	schema, err := p.loader.Load(ctx, schemaName)
	if err != nil {
		p.record(result, StagePopulation, StatusFailed, start, err.Error())
		return nil, errorRegistry.NewWithCause(ErrStageFailed, err).
			WithDetail("stage", StagePopulation).
			WithDetail("schema", schemaName)
	}

	population, err := p.populator.Populate(ctx, toExtractedEntities(entities, report.ConfidenceScore), schema)
	if err != nil {
		p.record(result, StagePopulation, StatusFailed, start, err.Error())
		return nil, errorRegistry.NewWithCause(ErrStageFailed, err).
			WithDetail("stage", StagePopulation)
	}

	p.saveStage(ctx, documentID, StagePopulation, population)
	p.record(result, StagePopulation, StatusCompleted, start, "")
	return population, nil
}

// toExtractedEntities adapts raw extraction output to the form engine's
// entity type, carrying the extraction-wide confidence score.
func toExtractedEntities(entities map[string]any, confidence float64) map[string]formx.ExtractedEntity {
	out := make(map[string]formx.ExtractedEntity, len(entities))
	for name, value := range entities {
		out[name] = formx.ExtractedEntity{
			Name:       name,
			Value:      formx.ValueFromAny(value),
			Confidence: confidence,
		}
	}
	return out
}

func (p *Pipeline) record(result *Result, stage, status string, start time.Time, reason string) {
	result.Stages = append(result.Stages, StageResult{
		Stage:           stage,
		Status:          status,
		DurationSeconds: time.Since(start).Seconds(),
		Reason:          reason,
	})
}

func (p *Pipeline) saveStage(ctx context.Context, documentID, stage string, data any) {
	if err := p.docs.SaveStageData(ctx, documentID, stage, data); err != nil {
		logx.WithError(err).WithField("stage", stage).Warn("Failed to persist stage data")
	}
}

func (p *Pipeline) markFailed(ctx context.Context, documentID string, runErr error) {
	if err := p.docs.UpdateStatus(ctx, documentID, store.StatusFailed, runErr); err != nil {
		logx.WithError(err).Warn("Failed to record failed status")
	}
}
