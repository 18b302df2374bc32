package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Meridian-Assist/policysplit-mcp/internal/logger"
	"github.com/Meridian-Assist/policysplit-mcp/internal/pdf"
	"github.com/Meridian-Assist/policysplit-mcp/internal/pipeline"
	"github.com/Meridian-Assist/policysplit-mcp/internal/segmenter"
	"github.com/Meridian-Assist/policysplit-mcp/internal/storage"
	"github.com/Meridian-Assist/policysplit-mcp/models"
)

type InvoiceSplitQuery struct {
	URL     string `json:"url,omitempty"`
	RawData []byte `json:"raw_data,omitempty"`
	// Trigger is the header text that repeats at the top of each
	// invoice, e.g. "TAX INVOICE". Required.
	Trigger string `json:"trigger"`
}

func InvoiceSplitTool() *mcp.Tool {
	inputschema, err := jsonschema.For[InvoiceSplitQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "invoice-split",
		Description: "Split a combined invoice PDF into one PDF per invoice, splitting wherever the supplied header text repeats. Each output is named after the first traveller and invoice number found in its table.",
		InputSchema: inputschema,
	}
}

func InvoiceSplitToolHandler(ctx context.Context, req *mcp.CallToolRequest, query InvoiceSplitQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *SplitResponse, error) {
	data, err := pdf.Resolve(ctx, models.SourceInfo{URL: query.URL, RawData: query.RawData})
	if err != nil {
		return nil, nil, err
	}

	p := pipeline.New(log, nil)
	result, err := p.SplitInvoices(ctx, data, query.Trigger)
	if errors.Is(err, segmenter.ErrNoSegmentsFound) {
		// Unlike policy splitting there is no default header to fall
		// back on: a trigger the user supplied that matches nothing is
		// a mistake worth failing loudly over.
		return nil, nil, fmt.Errorf("header text %q not found on any page", query.Trigger)
	}
	if err != nil {
		return nil, nil, err
	}

	return storeAndSummarize(ctx, store, result)
}
