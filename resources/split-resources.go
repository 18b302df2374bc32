package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Meridian-Assist/policysplit-mcp/internal/archive"
	"github.com/Meridian-Assist/policysplit-mcp/internal/storage"
	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// SplitResourceHandler serves the results of stored runs under the
// split:// scheme. Summaries and metadata are JSON text; document PDFs
// and the zip archive are binary blobs.
type SplitResourceHandler struct {
	store storage.Store
}

func NewSplitResourceHandler(store storage.Store) *SplitResourceHandler {
	return &SplitResourceHandler{store: store}
}

// documentView is the JSON shape of one document in resource responses.
// PDF bytes are deliberately not inlined; the pdf_uri points at them.
type documentView struct {
	Index    int             `json:"index"`
	Name     string          `json:"name"`
	Segment  models.Segment  `json:"segment"`
	Metadata models.Metadata `json:"metadata"`
	PdfURI   string          `json:"pdf_uri"`
}

// ListResources enumerates the top-level resource of every stored run.
func (h *SplitResourceHandler) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	runs, err := h.store.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var resources []mcp.Resource
	for _, run := range runs {
		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("split://%s", run.RunID),
			Name:        fmt.Sprintf("%s run %s", run.Kind, run.RunID),
			Description: fmt.Sprintf("%s run producing %d documents from %d pages", run.Kind, run.DocumentCount, run.PageCount),
			MIMEType:    "application/json",
		})
	}
	return resources, nil
}

// ReadResource resolves one split:// URI:
//
//	split://{runID}                       run summary
//	split://{runID}/documents             all document listings
//	split://{runID}/documents/{i}         one document listing
//	split://{runID}/documents/{i}/pdf     one document's PDF bytes
//	split://{runID}/archive               zip of every document's PDF
func (h *SplitResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	path, ok := strings.CutPrefix(uri, "split://")
	if !ok {
		return nil, fmt.Errorf("invalid URI scheme, expected split://")
	}
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		return nil, fmt.Errorf("invalid URI, missing run ID")
	}
	runID := parts[0]

	switch {
	case len(parts) == 1:
		return h.runSummary(ctx, uri, runID)
	case parts[1] == "archive" && len(parts) == 2:
		return h.archive(ctx, uri, runID)
	case parts[1] == "documents" && len(parts) == 2:
		return h.allDocuments(ctx, uri, runID)
	case parts[1] == "documents" && len(parts) <= 4:
		index, err := strconv.Atoi(parts[2])
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid document index: %s", parts[2])
		}
		if len(parts) == 3 {
			return h.document(ctx, uri, runID, index)
		}
		if parts[3] == "pdf" {
			return h.documentPdf(ctx, uri, runID, index)
		}
	}
	return nil, fmt.Errorf("unknown resource path: %s", path)
}

func (h *SplitResourceHandler) runSummary(ctx context.Context, uri, runID string) (*mcp.ReadResourceResult, error) {
	info, err := h.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"run_id":         info.RunID,
		"kind":           info.Kind,
		"strategy":       info.Strategy,
		"page_count":     info.PageCount,
		"text_failures":  info.TextFailures,
		"document_count": info.DocumentCount,
		"created_at":     info.CreatedAt,
		"available_resources": []string{
			fmt.Sprintf("split://%s/documents", runID),
			fmt.Sprintf("split://%s/archive", runID),
		},
	}
	return jsonResult(uri, summary)
}

func (h *SplitResourceHandler) allDocuments(ctx context.Context, uri, runID string) (*mcp.ReadResourceResult, error) {
	docs, err := h.store.GetDocuments(ctx, runID)
	if err != nil {
		return nil, err
	}

	views := make([]documentView, len(docs))
	for i, doc := range docs {
		views[i] = newDocumentView(runID, i, doc)
	}
	return jsonResult(uri, map[string]any{
		"document_count": len(views),
		"documents":      views,
	})
}

func (h *SplitResourceHandler) document(ctx context.Context, uri, runID string, index int) (*mcp.ReadResourceResult, error) {
	doc, err := h.store.GetDocument(ctx, runID, index)
	if err != nil {
		return nil, err
	}
	return jsonResult(uri, newDocumentView(runID, index, *doc))
}

func (h *SplitResourceHandler) documentPdf(ctx context.Context, uri, runID string, index int) (*mcp.ReadResourceResult, error) {
	doc, err := h.store.GetDocument(ctx, runID, index)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/pdf",
				Blob:     doc.Data,
			},
		},
	}, nil
}

func (h *SplitResourceHandler) archive(ctx context.Context, uri, runID string) (*mcp.ReadResourceResult, error) {
	docs, err := h.store.GetDocuments(ctx, runID)
	if err != nil {
		return nil, err
	}

	zipped, err := archive.Build(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive for run %s: %w", runID, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/zip",
				Blob:     zipped,
			},
		},
	}, nil
}

func newDocumentView(runID string, index int, doc models.NamedDocument) documentView {
	return documentView{
		Index:    index,
		Name:     doc.Name,
		Segment:  doc.Segment,
		Metadata: doc.Metadata,
		PdfURI:   fmt.Sprintf("split://%s/documents/%d/pdf", runID, index),
	}
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
