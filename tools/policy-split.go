package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Meridian-Assist/policysplit-mcp/internal/llm"
	"github.com/Meridian-Assist/policysplit-mcp/internal/logger"
	"github.com/Meridian-Assist/policysplit-mcp/internal/pdf"
	"github.com/Meridian-Assist/policysplit-mcp/internal/pipeline"
	"github.com/Meridian-Assist/policysplit-mcp/internal/segmenter"
	"github.com/Meridian-Assist/policysplit-mcp/internal/storage"
	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// DefaultTrigger is the page heading that starts a new policy in the
// combined documents this tool was built for.
const DefaultTrigger = "TRAVEL PROTECTION CARD"

type PolicySplitQuery struct {
	URL     string `json:"url,omitempty"`
	RawData []byte `json:"raw_data,omitempty"`
	// Strategy is "trigger" (default) or "fixed".
	Strategy string `json:"strategy,omitempty"`
	// Trigger overrides the default trigger keyword for the trigger
	// strategy.
	Trigger string `json:"trigger,omitempty"`
	// PagesPerDocument is required for the fixed strategy.
	PagesPerDocument int `json:"pages_per_document,omitempty"`
	// UseLLMFallback asks a language model for the name/identifier of
	// documents where pattern extraction found neither. Requires
	// OPENAI_API_KEY.
	UseLLMFallback bool `json:"use_llm_fallback,omitempty"`
}

// DocumentSummary is the per-document view returned in tool responses.
type DocumentSummary struct {
	Index       int             `json:"index"`
	Name        string          `json:"name"`
	Segment     models.Segment  `json:"segment"`
	Metadata    models.Metadata `json:"metadata"`
	ResourceURI string          `json:"resource_uri"`
	PdfURI      string          `json:"pdf_uri"`
}

type SplitResponse struct {
	RunID        string            `json:"run_id"`
	PageCount    int               `json:"page_count"`
	TextFailures int               `json:"text_failures"`
	Documents    []DocumentSummary `json:"documents"`
	ArchiveURI   string            `json:"archive_uri"`
}

func PolicySplitTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PolicySplitQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "policy-split",
		Description: "Split a combined insurance policy PDF into one PDF per policy, named after the insured person and certificate/assist number scraped from each document. Splits on a trigger keyword per page (default: the protection card heading) or on a fixed page count.",
		InputSchema: inputschema,
	}
}

func PolicySplitToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PolicySplitQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *SplitResponse, error) {
	cfg, err := policySplitConfig(query)
	if err != nil {
		return nil, nil, err
	}

	data, err := pdf.Resolve(ctx, models.SourceInfo{URL: query.URL, RawData: query.RawData})
	if err != nil {
		return nil, nil, err
	}

	p := pipeline.New(log, nameResolver(query.UseLLMFallback, log))
	result, err := p.SplitPolicies(ctx, data, cfg)
	if errors.Is(err, segmenter.ErrNoSegmentsFound) {
		// An empty result the user should see, not a tool failure.
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{
				Text: fmt.Sprintf("No documents found: the trigger text %q did not match any page.", cfg.Trigger),
			}},
		}, &SplitResponse{}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	return storeAndSummarize(ctx, store, result)
}

// policySplitConfig maps the query onto a segmenter configuration,
// rejecting inconsistent parameter combinations up front.
func policySplitConfig(query PolicySplitQuery) (segmenter.Config, error) {
	switch query.Strategy {
	case "", "trigger":
		trigger := query.Trigger
		if trigger == "" {
			trigger = DefaultTrigger
		}
		return segmenter.Config{Strategy: segmenter.StrategyTrigger, Trigger: trigger}, nil
	case "fixed":
		return segmenter.Config{
			Strategy:         segmenter.StrategyFixedCount,
			PagesPerDocument: query.PagesPerDocument,
		}, nil
	default:
		return segmenter.Config{}, fmt.Errorf("unknown strategy %q (expected \"trigger\" or \"fixed\")", query.Strategy)
	}
}

// nameResolver wires the optional LLM fallback. Disabled when the
// feature is off or no API key is configured.
func nameResolver(enabled bool, log logger.Logger) pipeline.Resolver {
	if !enabled {
		return nil
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Warn("use_llm_fallback requested but OPENAI_API_KEY is not set; falling back to positional names")
		return nil
	}
	return func(ctx context.Context, text string) (string, string, error) {
		fields, err := llm.ResolveNameFields(ctx, apiKey, text)
		if err != nil {
			return "", "", err
		}
		return fields.Name, fields.Identifier, nil
	}
}

// storeAndSummarize persists the run and builds the shared tool
// response: a human-readable listing plus the structured summary with
// resource URIs.
func storeAndSummarize(ctx context.Context, store storage.Store, result *models.RunResult) (*mcp.CallToolResult, *SplitResponse, error) {
	runID, err := store.StoreRun(ctx, result)
	if err != nil {
		return nil, nil, err
	}

	response := &SplitResponse{
		RunID:        runID,
		PageCount:    result.PageCount,
		TextFailures: result.TextFailures,
		ArchiveURI:   fmt.Sprintf("split://%s/archive", runID),
	}

	var listing strings.Builder
	fmt.Fprintf(&listing, "Split %d pages into %d documents (run %s).\n", result.PageCount, len(result.Documents), runID)
	if result.TextFailures > 0 {
		fmt.Fprintf(&listing, "Text extraction failed on %d pages; their metadata may be incomplete.\n", result.TextFailures)
	}
	for i, doc := range result.Documents {
		response.Documents = append(response.Documents, DocumentSummary{
			Index:       i,
			Name:        doc.Name,
			Segment:     doc.Segment,
			Metadata:    doc.Metadata,
			ResourceURI: fmt.Sprintf("split://%s/documents/%d", runID, i),
			PdfURI:      fmt.Sprintf("split://%s/documents/%d/pdf", runID, i),
		})
		fmt.Fprintf(&listing, "  %d. %s (pages %d-%d)\n", i+1, doc.Name, doc.Segment.Start+1, doc.Segment.End)
	}
	fmt.Fprintf(&listing, "Zip archive: %s", response.ArchiveURI)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: listing.String()}},
	}, response, nil
}
