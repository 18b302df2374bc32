// Package pdf wraps the PDF toolkit operations the pipeline needs: source
// validation, page counting, rendering a page range into a standalone
// document, merging sources, and per-page plain text extraction.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// ErrUnreadableDocument reports a source that could not be parsed as a
// PDF (corrupt, truncated, or encrypted). It is fatal for that source
// only; in a batch merge the other sources are unaffected.
var ErrUnreadableDocument = errors.New("source document is not a readable PDF")

// IsPDF sniffs the PDF magic header. Used to fail fast on obviously
// wrong uploads before handing bytes to the parser.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// Validate parses and validates the source, returning its page count.
// Any parse failure is reported as ErrUnreadableDocument.
func Validate(data models.PdfData) (int, error) {
	if !IsPDF(data) {
		return 0, fmt.Errorf("%w: missing %%PDF header", ErrUnreadableDocument)
	}
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	return ctx.PageCount, nil
}

// RenderSegment writes the pages of one segment into a standalone PDF.
// The segment is 0-based half-open; pdfcpu page selection is 1-based
// inclusive.
func RenderSegment(data models.PdfData, seg models.Segment) (models.PdfData, error) {
	if seg.Pages() <= 0 {
		return nil, fmt.Errorf("segment %+v covers no pages", seg)
	}
	selection := []string{fmt.Sprintf("%d-%d", seg.Start+1, seg.End)}
	conf := model.NewDefaultConfiguration()
	var buf bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &buf, selection, conf); err != nil {
		return nil, fmt.Errorf("rendering pages %d-%d: %w", seg.Start+1, seg.End, err)
	}
	return buf.Bytes(), nil
}

// Merge concatenates the sources into one PDF, in the given order. Each
// source is validated first so one unreadable document fails the merge
// with a report naming it, rather than a parser error mid-write.
func Merge(sources []models.PdfData) (models.PdfData, error) {
	if len(sources) == 0 {
		return nil, errors.New("no source documents to merge")
	}
	readers := make([]io.ReadSeeker, len(sources))
	for i, src := range sources {
		if _, err := Validate(src); err != nil {
			return nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		readers[i] = bytes.NewReader(src)
	}
	conf := model.NewDefaultConfiguration()
	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, conf); err != nil {
		return nil, fmt.Errorf("merging %d documents: %w", len(sources), err)
	}
	return buf.Bytes(), nil
}

// FetchURL downloads a source PDF.
func FetchURL(ctx context.Context, url string) (models.PdfData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Resolve returns the source bytes from whichever field of SourceInfo is
// set.
func Resolve(ctx context.Context, source models.SourceInfo) (models.PdfData, error) {
	switch {
	case len(source.RawData) > 0:
		return source.RawData, nil
	case source.URL != "":
		return FetchURL(ctx, source.URL)
	default:
		return nil, errors.New("no source data provided")
	}
}
