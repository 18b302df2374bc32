package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Meridian-Assist/policysplit-mcp/internal/logger"
	"github.com/Meridian-Assist/policysplit-mcp/internal/pdf"
	"github.com/Meridian-Assist/policysplit-mcp/internal/pipeline"
	"github.com/Meridian-Assist/policysplit-mcp/internal/storage"
	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// MergeSource is one input document for pdf-merge, given either as a
// URL or as raw bytes. Output page order follows the source order.
type MergeSource struct {
	URL     string `json:"url,omitempty"`
	RawData []byte `json:"raw_data,omitempty"`
}

type PdfMergeQuery struct {
	Sources []MergeSource `json:"sources"`
}

type PdfMergeResponse struct {
	RunID     string `json:"run_id"`
	PageCount int    `json:"page_count"`
	PdfURI    string `json:"pdf_uri"`
}

func PdfMergeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PdfMergeQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-merge",
		Description: "Merge two or more PDF documents into one, preserving the order the sources were given in. Sources may be URLs, raw bytes, or a mix.",
		InputSchema: inputschema,
	}
}

func PdfMergeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PdfMergeQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *PdfMergeResponse, error) {
	if len(query.Sources) < 2 {
		return nil, nil, fmt.Errorf("merge needs at least 2 sources, got %d", len(query.Sources))
	}

	docs := make([]models.PdfData, len(query.Sources))
	for i, src := range query.Sources {
		data, err := pdf.Resolve(ctx, models.SourceInfo{URL: src.URL, RawData: src.RawData})
		if err != nil {
			return nil, nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		docs[i] = data
	}

	result, err := pipeline.New(log, nil).Merge(ctx, docs)
	if err != nil {
		return nil, nil, err
	}

	runID, err := store.StoreRun(ctx, result)
	if err != nil {
		return nil, nil, err
	}

	response := &PdfMergeResponse{
		RunID:     runID,
		PageCount: result.PageCount,
		PdfURI:    fmt.Sprintf("split://%s/documents/0/pdf", runID),
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{
			Text: fmt.Sprintf("Merged %d documents into a %d-page PDF (run %s).\nResult: %s",
				len(query.Sources), result.PageCount, runID, response.PdfURI),
		}},
	}, response, nil
}
