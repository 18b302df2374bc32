package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun() *models.RunResult {
	return &models.RunResult{
		Kind:         "policy",
		Strategy:     "trigger",
		PageCount:    3,
		TextFailures: 1,
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
	}
}

func TestStoreAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runID, err := store.StoreRun(ctx, sampleRun())
	if err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	info, err := store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if info.Kind != "policy" || info.Strategy != "trigger" {
		t.Errorf("run info = %+v", info)
	}
	if info.PageCount != 3 || info.TextFailures != 1 || info.DocumentCount != 2 {
		t.Errorf("run counts = %+v", info)
	}
}

func TestGetDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	run := sampleRun()

	runID, err := store.StoreRun(ctx, run)
	if err != nil {
		t.Fatalf("StoreRun: %v", err)
	}

	docs, err := store.GetDocuments(ctx, runID)
	if err != nil {
		t.Fatalf("GetDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	for i, doc := range docs {
		want := run.Documents[i]
		if doc.Name != want.Name {
			t.Errorf("document %d name = %q, want %q", i, doc.Name, want.Name)
		}
		if doc.Segment != want.Segment {
			t.Errorf("document %d segment = %+v, want %+v", i, doc.Segment, want.Segment)
		}
		if doc.Metadata != want.Metadata {
			t.Errorf("document %d metadata = %+v, want %+v", i, doc.Metadata, want.Metadata)
		}
		if !bytes.Equal(doc.Data, want.Data) {
			t.Errorf("document %d PDF bytes mismatch", i)
		}
	}
}

func TestGetDocumentByIndex(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runID, err := store.StoreRun(ctx, sampleRun())
	if err != nil {
		t.Fatalf("StoreRun: %v", err)
	}

	doc, err := store.GetDocument(ctx, runID, 1)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Name != "Policy_2" {
		t.Errorf("document name = %q", doc.Name)
	}

	if _, err := store.GetDocument(ctx, runID, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("out-of-range index error = %v, want ErrNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.StoreRun(ctx, sampleRun()); err != nil {
			t.Fatalf("StoreRun %d: %v", i, err)
		}
	}

	infos, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(infos) != 3 {
		t.Errorf("listed %d runs, want 3", len(infos))
	}
}

func TestDeleteRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	runID, err := store.StoreRun(ctx, sampleRun())
	if err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	if err := store.DeleteRun(ctx, runID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, err := store.GetRun(ctx, runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun after delete = %v, want ErrNotFound", err)
	}
	if err := store.DeleteRun(ctx, runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRun = %v, want ErrNotFound", err)
	}
}

func TestGetRunUnknownID(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetRun(context.Background(), "no-such-run"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
