package resources

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Meridian-Assist/policysplit-mcp/internal/storage"
	"github.com/Meridian-Assist/policysplit-mcp/models"
)

func newTestHandler(t *testing.T) (*SplitResourceHandler, string) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	runID, err := store.StoreRun(context.Background(), &models.RunResult{
		Kind:      "policy",
		Strategy:  "trigger",
		PageCount: 3,
		Documents: []models.NamedDocument{
			{
				Name:     "JOHN_SMITH_TP-2024-01",
				Segment:  models.Segment{Start: 0, End: 2},
				Metadata: models.Metadata{Name: "JOHN SMITH", Identifier: "TP-2024-01"},
				Data:     []byte("%PDF-1.4 doc one"),
			},
			{
				Name:    "Policy_2",
				Segment: models.Segment{Start: 2, End: 3},
				Data:    []byte("%PDF-1.4 doc two"),
			},
		},
	})
	if err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	return NewSplitResourceHandler(store), runID
}

func TestReadRunSummary(t *testing.T) {
	handler, runID := newTestHandler(t)

	result, err := handler.ReadResource(context.Background(), "split://"+runID)
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if got := result.Contents[0].MIMEType; got != "application/json" {
		t.Errorf("MIME type = %q", got)
	}

	var summary map[string]any
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &summary); err != nil {
		t.Fatalf("unmarshaling summary: %v", err)
	}
	if summary["run_id"] != runID {
		t.Errorf("run_id = %v, want %s", summary["run_id"], runID)
	}
	if summary["document_count"] != float64(2) {
		t.Errorf("document_count = %v, want 2", summary["document_count"])
	}
}

func TestReadDocumentListing(t *testing.T) {
	handler, runID := newTestHandler(t)

	result, err := handler.ReadResource(context.Background(), "split://"+runID+"/documents/1")
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}

	var view documentView
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &view); err != nil {
		t.Fatalf("unmarshaling document view: %v", err)
	}
	if view.Name != "Policy_2" {
		t.Errorf("name = %q, want Policy_2", view.Name)
	}
	if !strings.HasSuffix(view.PdfURI, "/documents/1/pdf") {
		t.Errorf("pdf_uri = %q", view.PdfURI)
	}
	if strings.Contains(result.Contents[0].Text, "%PDF") {
		t.Error("listing should not inline PDF bytes")
	}
}

func TestReadDocumentPdfBlob(t *testing.T) {
	handler, runID := newTestHandler(t)

	result, err := handler.ReadResource(context.Background(), "split://"+runID+"/documents/0/pdf")
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	contents := result.Contents[0]
	if contents.MIMEType != "application/pdf" {
		t.Errorf("MIME type = %q", contents.MIMEType)
	}
	if !bytes.Equal(contents.Blob, []byte("%PDF-1.4 doc one")) {
		t.Errorf("blob = %q", contents.Blob)
	}
}

func TestReadArchive(t *testing.T) {
	handler, runID := newTestHandler(t)

	result, err := handler.ReadResource(context.Background(), "split://"+runID+"/archive")
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	contents := result.Contents[0]
	if contents.MIMEType != "application/zip" {
		t.Errorf("MIME type = %q", contents.MIMEType)
	}

	zr, err := zip.NewReader(bytes.NewReader(contents.Blob), int64(len(contents.Blob)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive has %d entries, want 2", len(zr.File))
	}
	if zr.File[0].Name != "JOHN_SMITH_TP-2024-01.pdf" {
		t.Errorf("first entry = %q", zr.File[0].Name)
	}
}

func TestReadResourceBadURIs(t *testing.T) {
	handler, runID := newTestHandler(t)

	for _, uri := range []string{
		"pdf://" + runID,
		"split://",
		"split://" + runID + "/pages",
		"split://" + runID + "/documents/abc",
		"split://" + runID + "/documents/0/text",
	} {
		if _, err := handler.ReadResource(context.Background(), uri); err == nil {
			t.Errorf("ReadResource(%q) succeeded, want error", uri)
		}
	}
}
