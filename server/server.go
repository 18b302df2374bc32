package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Meridian-Assist/policysplit-mcp/internal/logger"
	"github.com/Meridian-Assist/policysplit-mcp/internal/storage"
	"github.com/Meridian-Assist/policysplit-mcp/resources"
	"github.com/Meridian-Assist/policysplit-mcp/tools"
)

func CreateServer(log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "policysplit-mcp", Version: "v0.1.0"}, nil)

	store, err := initializeStorage(log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}

	splitResourceHandler := resources.NewSplitResourceHandler(store)

	mcp.AddTool(server, tools.PolicySplitTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PolicySplitQuery) (*mcp.CallToolResult, *tools.SplitResponse, error) {
		return tools.PolicySplitToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.InvoiceSplitTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.InvoiceSplitQuery) (*mcp.CallToolResult, *tools.SplitResponse, error) {
		return tools.InvoiceSplitToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.PdfMergeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PdfMergeQuery) (*mcp.CallToolResult, *tools.PdfMergeResponse, error) {
		return tools.PdfMergeToolHandler(ctx, req, query, store, log)
	})

	// Template for run summary
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "split://{runId}",
		Name:        "split-run",
		Description: "Summary of a split or merge run: strategy, page counts, document count",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return splitResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for all documents of a run
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "split://{runId}/documents",
		Name:        "split-documents",
		Description: "All documents produced by a run, with names, page ranges, and metadata",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return splitResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for one document
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "split://{runId}/documents/{documentIndex}",
		Name:        "split-document",
		Description: "A specific document from a run (0-indexed): name, page range, metadata",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return splitResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for one document's PDF bytes
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "split://{runId}/documents/{documentIndex}/pdf",
		Name:        "split-document-pdf",
		Description: "The PDF bytes of a specific document from a run (0-indexed)",
		MIMEType:    "application/pdf",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return splitResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for the zip archive of a run
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "split://{runId}/archive",
		Name:        "split-archive",
		Description: "Zip archive containing every document of a run as <name>.pdf",
		MIMEType:    "application/zip",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return splitResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	return server
}

// initializeStorage creates the storage backend
func initializeStorage(log logger.Logger) (storage.Store, error) {
	dbPath := os.Getenv("POLICYSPLIT_DB_PATH")
	if dbPath == "" {
		// Default to ~/.policysplit/runs.db
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbDir := filepath.Join(homeDir, ".policysplit")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "runs.db")
	}

	log.Info("Initializing SQLite database at: %s", dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}
	return store, nil
}
