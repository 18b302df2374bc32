package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

func TestBuild(t *testing.T) {
	docs := []models.NamedDocument{
		{Name: "JOHN_SMITH_TP-2024-01", Data: []byte("%PDF-1.4 one")},
		{Name: "Policy_2", Data: []byte("%PDF-1.4 two")},
	}

	data, err := Build(docs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a readable zip: %v", err)
	}
	if len(reader.File) != len(docs) {
		t.Fatalf("zip has %d entries, want %d", len(reader.File), len(docs))
	}
	for i, f := range reader.File {
		wantName := docs[i].Name + ".pdf"
		if f.Name != wantName {
			t.Errorf("entry %d named %q, want %q", i, f.Name, wantName)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening entry %q: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading entry %q: %v", f.Name, err)
		}
		if !bytes.Equal(content, docs[i].Data) {
			t.Errorf("entry %q content mismatch", f.Name)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	data, err := Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("empty zip not readable: %v", err)
	}
	if len(reader.File) != 0 {
		t.Errorf("expected 0 entries, got %d", len(reader.File))
	}
}
