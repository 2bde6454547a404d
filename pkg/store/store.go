// Package store persists document metadata and per-stage processing
// results as JSON files through an fsx.FileSystem.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nawaf-TBE/Pillbot/pkg/fsx"
	"github.com/Nawaf-TBE/Pillbot/pkg/logx"
)

// Document lifecycle statuses
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	metadataSuffix  = "_metadata.json"
	processedSuffix = "_processed.json"
)

// DocumentMetadata describes a registered document
type DocumentMetadata struct {
	DocumentID string         `json:"document_id"`
	Filename   string         `json:"filename,omitempty"`
	MimeType   string         `json:"mime_type,omitempty"`
	SizeBytes  int64          `json:"size_bytes,omitempty"`
	Status     string         `json:"status,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// StageData holds the persisted output of one processing stage
type StageData struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type processedRecord struct {
	DocumentID string               `json:"document_id"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
	Stages     map[string]StageData `json:"stages"`
}

// DocumentStore reads and writes document records through a FileSystem
type DocumentStore struct {
	fs  fsx.FileSystem
	now func() time.Time
}

// NewDocumentStore creates a store backed by the given file system
func NewDocumentStore(fs fsx.FileSystem) *DocumentStore {
	return &DocumentStore{
		fs:  fs,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GenerateDocumentID returns a new unique document identifier
func GenerateDocumentID() string {
	return uuid.NewString()
}

func metadataPath(documentID string) string {
	return documentID + metadataSuffix
}

func processedPath(documentID string) string {
	return documentID + processedSuffix
}

// SaveMetadata writes metadata for a document. An existing record is
// replaced but its created_at timestamp is preserved.
func (s *DocumentStore) SaveMetadata(ctx context.Context, meta DocumentMetadata) error {
	if meta.DocumentID == "" {
		return errorRegistry.NewWithMessage(ErrWriteFailed, "document_id is required")
	}

	path := metadataPath(meta.DocumentID)
	now := s.now()
	meta.UpdatedAt = now
	meta.CreatedAt = now

	if existing, err := s.readMetadata(ctx, path); err == nil {
		meta.CreatedAt = existing.CreatedAt
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errorRegistry.NewWithCause(ErrWriteFailed, err).
			WithDetail("document_id", meta.DocumentID)
	}
	if err := s.fs.WriteFile(ctx, path, data); err != nil {
		return errorRegistry.NewWithCause(ErrWriteFailed, err).
			WithDetail("document_id", meta.DocumentID)
	}

	logx.WithFields(logx.Fields{
		"document_id": meta.DocumentID,
		"status":      meta.Status,
	}).Debug("Saved document metadata")
	return nil
}

// GetMetadata retrieves metadata for a document
func (s *DocumentStore) GetMetadata(ctx context.Context, documentID string) (*DocumentMetadata, error) {
	path := metadataPath(documentID)

	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrReadFailed, err).
			WithDetail("document_id", documentID)
	}
	if !exists {
		return nil, errorRegistry.New(ErrDocumentNotFound).
			WithDetail("document_id", documentID)
	}

	meta, err := s.readMetadata(ctx, path)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *DocumentStore) readMetadata(ctx context.Context, path string) (*DocumentMetadata, error) {
	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrReadFailed, err)
	}
	var meta DocumentMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errorRegistry.NewWithCause(ErrCorruptData, err)
	}
	return &meta, nil
}

// UpdateStatus sets the status on an existing document record
func (s *DocumentStore) UpdateStatus(ctx context.Context, documentID, status string, processingErr error) error {
	meta, err := s.GetMetadata(ctx, documentID)
	if err != nil {
		return err
	}
	meta.Status = status
	meta.Error = ""
	if processingErr != nil {
		meta.Error = processingErr.Error()
	}
	return s.SaveMetadata(ctx, *meta)
}

// SaveStageData stores the output of a processing stage. Stage data
// for other stages is preserved.
func (s *DocumentStore) SaveStageData(ctx context.Context, documentID, stage string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errorRegistry.NewWithCause(ErrWriteFailed, err).
			WithDetail("document_id", documentID).
			WithDetail("stage", stage)
	}

	path := processedPath(documentID)
	now := s.now()

	record := processedRecord{
		DocumentID: documentID,
		CreatedAt:  now,
		Stages:     make(map[string]StageData),
	}
	if existing, err := s.readProcessed(ctx, path); err == nil {
		record = *existing
	}
	record.UpdatedAt = now
	record.Stages[stage] = StageData{Data: payload, Timestamp: now}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errorRegistry.NewWithCause(ErrWriteFailed, err).
			WithDetail("document_id", documentID)
	}
	if err := s.fs.WriteFile(ctx, path, out); err != nil {
		return errorRegistry.NewWithCause(ErrWriteFailed, err).
			WithDetail("document_id", documentID).
			WithDetail("stage", stage)
	}

	logx.WithFields(logx.Fields{
		"document_id": documentID,
		"stage":       stage,
	}).Debug("Saved stage data")
	return nil
}

// GetStageData retrieves the raw JSON stored for a stage
func (s *DocumentStore) GetStageData(ctx context.Context, documentID, stage string) (json.RawMessage, error) {
	record, err := s.loadProcessed(ctx, documentID)
	if err != nil {
		return nil, err
	}
	entry, ok := record.Stages[stage]
	if !ok {
		return nil, errorRegistry.New(ErrStageNotFound).
			WithDetail("document_id", documentID).
			WithDetail("stage", stage)
	}
	return entry.Data, nil
}

// GetStageDataInto decodes the stored stage data into v
func (s *DocumentStore) GetStageDataInto(ctx context.Context, documentID, stage string, v any) error {
	raw, err := s.GetStageData(ctx, documentID, stage)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errorRegistry.NewWithCause(ErrCorruptData, err).
			WithDetail("document_id", documentID).
			WithDetail("stage", stage)
	}
	return nil
}

// Stages lists the stage names recorded for a document, sorted
func (s *DocumentStore) Stages(ctx context.Context, documentID string) ([]string, error) {
	path := processedPath(documentID)
	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrReadFailed, err).
			WithDetail("document_id", documentID)
	}
	if !exists {
		return []string{}, nil
	}

	record, err := s.readProcessed(ctx, path)
	if err != nil {
		return nil, err
	}

	stages := make([]string, 0, len(record.Stages))
	for name := range record.Stages {
		stages = append(stages, name)
	}
	sort.Strings(stages)
	return stages, nil
}

func (s *DocumentStore) loadProcessed(ctx context.Context, documentID string) (*processedRecord, error) {
	path := processedPath(documentID)
	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrReadFailed, err).
			WithDetail("document_id", documentID)
	}
	if !exists {
		return nil, errorRegistry.New(ErrDocumentNotFound).
			WithDetail("document_id", documentID)
	}
	return s.readProcessed(ctx, path)
}

func (s *DocumentStore) readProcessed(ctx context.Context, path string) (*processedRecord, error) {
	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrReadFailed, err)
	}
	var record processedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errorRegistry.NewWithCause(ErrCorruptData, err)
	}
	if record.Stages == nil {
		record.Stages = make(map[string]StageData)
	}
	return &record, nil
}

// ListDocuments returns the IDs of all documents with stored metadata
func (s *DocumentStore) ListDocuments(ctx context.Context) ([]string, error) {
	entries, err := s.fs.List(ctx, ".")
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrReadFailed, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir || !strings.HasSuffix(entry.Name, metadataSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name, metadataSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteDocument removes all stored data for a document
func (s *DocumentStore) DeleteDocument(ctx context.Context, documentID string) error {
	deleted := 0
	for _, path := range []string{metadataPath(documentID), processedPath(documentID)} {
		exists, err := s.fs.Exists(ctx, path)
		if err != nil {
			return errorRegistry.NewWithCause(ErrReadFailed, err).
				WithDetail("document_id", documentID)
		}
		if !exists {
			continue
		}
		if err := s.fs.DeleteFile(ctx, path); err != nil {
			return errorRegistry.NewWithCause(ErrWriteFailed, err).
				WithDetail("document_id", documentID)
		}
		deleted++
	}

	if deleted == 0 {
		logx.WithField("document_id", documentID).Warn("No stored files found for document")
	}
	return nil
}
