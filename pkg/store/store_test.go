package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/Nawaf-TBE/Pillbot/pkg/errx"
	"github.com/Nawaf-TBE/Pillbot/pkg/fsx/fsxlocal"
	"github.com/Nawaf-TBE/Pillbot/pkg/store"
)

func newTestStore(t *testing.T) *store.DocumentStore {
	t.Helper()
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file system: %v", err)
	}
	return store.NewDocumentStore(fs)
}

func TestGenerateDocumentID_Unique(t *testing.T) {
	a := store.GenerateDocumentID()
	b := store.GenerateDocumentID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a, b)
	}
}

func TestSaveAndGetMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := store.GenerateDocumentID()

	meta := store.DocumentMetadata{
		DocumentID: id,
		Filename:   "referral.pdf",
		MimeType:   "application/pdf",
		SizeBytes:  2048,
		Status:     store.StatusUploaded,
	}
	if err := s.SaveMetadata(ctx, meta); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.GetMetadata(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Filename != "referral.pdf" || got.Status != store.StatusUploaded {
		t.Fatalf("unexpected metadata: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestSaveMetadata_PreservesCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := store.GenerateDocumentID()

	meta := store.DocumentMetadata{DocumentID: id, Status: store.StatusUploaded}
	if err := s.SaveMetadata(ctx, meta); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	first, err := s.GetMetadata(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	meta.Status = store.StatusProcessing
	if err := s.SaveMetadata(ctx, meta); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	second, err := s.GetMetadata(ctx, id)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed: %v vs %v", first.CreatedAt, second.CreatedAt)
	}
	if second.Status != store.StatusProcessing {
		t.Fatalf("expected status updated, got %q", second.Status)
	}
}

func TestGetMetadata_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMetadata(context.Background(), "does-not-exist")
	if err == nil {
		t.Fatal("expected error for missing document")
	}
	var xerr *errx.Error
	if !errx.As(err, &xerr) || xerr.Code != store.ErrDocumentNotFound.Code {
		t.Fatalf("expected DOCUMENT_NOT_FOUND, got %v", err)
	}
}

func TestUpdateStatus_RecordsError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := store.GenerateDocumentID()

	if err := s.SaveMetadata(ctx, store.DocumentMetadata{DocumentID: id, Status: store.StatusProcessing}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.UpdateStatus(ctx, id, store.StatusFailed, context.DeadlineExceeded); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	meta, err := s.GetMetadata(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if meta.Status != store.StatusFailed || meta.Error == "" {
		t.Fatalf("expected failed status with error, got %+v", meta)
	}
}

func TestStageData_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := store.GenerateDocumentID()

	type ocrOutput struct {
		Text  string `json:"text"`
		Pages int    `json:"pages"`
	}
	if err := s.SaveStageData(ctx, id, "ocr", ocrOutput{Text: "hello", Pages: 3}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var got ocrOutput
	if err := s.GetStageDataInto(ctx, id, "ocr", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Text != "hello" || got.Pages != 3 {
		t.Fatalf("unexpected stage data: %+v", got)
	}
}

func TestStageData_PreservesOtherStages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := store.GenerateDocumentID()

	if err := s.SaveStageData(ctx, id, "ocr", map[string]string{"text": "one"}); err != nil {
		t.Fatalf("save ocr failed: %v", err)
	}
	if err := s.SaveStageData(ctx, id, "parsing", map[string]string{"markdown": "# two"}); err != nil {
		t.Fatalf("save parsing failed: %v", err)
	}

	stages, err := s.Stages(ctx, id)
	if err != nil {
		t.Fatalf("stages failed: %v", err)
	}
	if len(stages) != 2 || stages[0] != "ocr" || stages[1] != "parsing" {
		t.Fatalf("unexpected stages: %v", stages)
	}

	var ocr map[string]string
	if err := s.GetStageDataInto(ctx, id, "ocr", &ocr); err != nil {
		t.Fatalf("ocr stage lost after second write: %v", err)
	}
	if ocr["text"] != "one" {
		t.Fatalf("ocr stage overwritten: %v", ocr)
	}
}

func TestGetStageData_MissingStage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := store.GenerateDocumentID()

	if err := s.SaveStageData(ctx, id, "ocr", "text"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	_, err := s.GetStageData(ctx, id, "extraction")
	var xerr *errx.Error
	if !errx.As(err, &xerr) || xerr.Code != store.ErrStageNotFound.Code {
		t.Fatalf("expected STAGE_NOT_FOUND, got %v", err)
	}
}

func TestStages_EmptyForUnknownDocument(t *testing.T) {
	s := newTestStore(t)

	stages, err := s.Stages(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("stages failed: %v", err)
	}
	if len(stages) != 0 {
		t.Fatalf("expected no stages, got %v", stages)
	}
}

func TestListDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids := []string{"doc-b", "doc-a", "doc-c"}
	for _, id := range ids {
		if err := s.SaveMetadata(ctx, store.DocumentMetadata{DocumentID: id}); err != nil {
			t.Fatalf("save %s failed: %v", id, err)
		}
	}
	// Processed-only files must not show up as documents.
	if err := s.SaveStageData(ctx, "doc-a", "ocr", "x"); err != nil {
		t.Fatalf("stage save failed: %v", err)
	}

	got, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"doc-a", "doc-b", "doc-c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDeleteDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := store.GenerateDocumentID()

	if err := s.SaveMetadata(ctx, store.DocumentMetadata{DocumentID: id}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveStageData(ctx, id, "ocr", "text"); err != nil {
		t.Fatalf("stage save failed: %v", err)
	}

	if err := s.DeleteDocument(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetMetadata(ctx, id); err == nil {
		t.Fatal("expected metadata gone after delete")
	}

	// Deleting again is a no-op.
	if err := s.DeleteDocument(ctx, id); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}
