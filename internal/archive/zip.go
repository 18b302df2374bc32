// Package archive bundles a run's output documents into a zip for
// single-download delivery.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// Build writes every document into a zip as <name>.pdf, preserving run
// order. Names are already unique per run, so entries never collide.
func Build(docs []models.NamedDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, doc := range docs {
		entry, err := w.Create(doc.Name + ".pdf")
		if err != nil {
			return nil, fmt.Errorf("creating zip entry %q: %w", doc.Name, err)
		}
		if _, err := entry.Write(doc.Data); err != nil {
			return nil, fmt.Errorf("writing zip entry %q: %w", doc.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing zip: %w", err)
	}
	return buf.Bytes(), nil
}
