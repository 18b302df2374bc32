// Package pipeline runs one split or merge end to end: source bytes in,
// named per-document PDFs out. It is stateless between calls; all
// working state (segments, name registry, page texts) belongs to one
// run and is discarded with it.
package pipeline

import (
	"context"
	"fmt"

	"github.com/Meridian-Assist/policysplit-mcp/internal/extract"
	"github.com/Meridian-Assist/policysplit-mcp/internal/logger"
	"github.com/Meridian-Assist/policysplit-mcp/internal/naming"
	"github.com/Meridian-Assist/policysplit-mcp/internal/pdf"
	"github.com/Meridian-Assist/policysplit-mcp/internal/segmenter"
	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// Resolver fills in a missing name/identifier pair from document text.
// It is consulted only when pattern extraction found neither field.
// Resolver errors degrade to the positional fallback name, never fail
// the run.
type Resolver func(ctx context.Context, text string) (name, identifier string, err error)

// Pipeline executes split and merge runs.
type Pipeline struct {
	log     logger.Logger
	resolve Resolver
}

// New creates a pipeline. resolve may be nil to disable the fallback.
func New(log logger.Logger, resolve Resolver) *Pipeline {
	return &Pipeline{log: log, resolve: resolve}
}

// family binds the document-family specifics: which extractor runs over
// segment text and the prefix of the positional fallback name.
type family struct {
	fallbackPrefix string
	extractMeta    func(text string) models.Metadata
	// baseFields picks which metadata fields compose the filename stem.
	baseFields func(meta models.Metadata) (name, id string)
	// useResolver allows the LLM fallback; it only makes sense for the
	// policy family where a person's name is the target.
	useResolver bool
}

var (
	policyFamily = family{
		fallbackPrefix: "Policy",
		extractMeta:    extract.Policy,
		baseFields:     func(m models.Metadata) (string, string) { return m.Name, m.Identifier },
		useResolver:    true,
	}
	invoiceFamily = family{
		fallbackPrefix: "Invoice",
		extractMeta:    extract.Invoice,
		baseFields:     func(m models.Metadata) (string, string) { return m.FirstMember, m.InvoiceNumber },
	}
)

// SplitPolicies splits a combined policy document into one PDF per
// policy.
func (p *Pipeline) SplitPolicies(ctx context.Context, data models.PdfData, cfg segmenter.Config) (*models.RunResult, error) {
	return p.split(ctx, data, cfg, policyFamily, "policy")
}

// SplitInvoices splits a combined invoice document on a user-supplied
// repeated header.
func (p *Pipeline) SplitInvoices(ctx context.Context, data models.PdfData, trigger string) (*models.RunResult, error) {
	cfg := segmenter.Config{Strategy: segmenter.StrategyHeaderRepeat, Trigger: trigger}
	return p.split(ctx, data, cfg, invoiceFamily, "invoice")
}

func (p *Pipeline) split(ctx context.Context, data models.PdfData, cfg segmenter.Config, fam family, kind string) (*models.RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pageCount, err := pdf.Validate(data)
	if err != nil {
		return nil, err
	}

	pageTexts, textFailures, err := pdf.ExtractPageTexts(data)
	if err != nil {
		return nil, err
	}
	// Segments must address pages as the renderer counts them. Pad or
	// drop trailing text entries if the two parsers disagree.
	if len(pageTexts) != pageCount {
		p.log.Warn("text layer reports %d pages, document has %d", len(pageTexts), pageCount)
		for len(pageTexts) < pageCount {
			pageTexts = append(pageTexts, "")
			textFailures++
		}
		pageTexts = pageTexts[:pageCount]
	}
	if textFailures > 0 {
		p.log.Warn("text extraction failed on %d of %d pages; affected pages contribute empty text", textFailures, pageCount)
	}

	segments, err := segmenter.Split(pageTexts, cfg)
	if err != nil {
		return nil, err
	}

	planned := p.plan(ctx, pageTexts, segments, fam)

	docs := make([]models.NamedDocument, len(planned))
	for i, pl := range planned {
		rendered, err := pdf.RenderSegment(data, pl.Segment)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", pl.Name, err)
		}
		docs[i] = pl
		docs[i].Data = rendered
	}

	p.log.Info("%s split produced %d documents from %d pages (strategy %s)", kind, len(docs), pageCount, cfg.Strategy)

	return &models.RunResult{
		Kind:         kind,
		Strategy:     cfg.Strategy.String(),
		PageCount:    pageCount,
		TextFailures: textFailures,
		Documents:    docs,
	}, nil
}

// plan derives metadata and unique names for each segment. It returns
// documents without rendered bytes; rendering is the caller's step.
func (p *Pipeline) plan(ctx context.Context, pageTexts []string, segments []models.Segment, fam family) []models.NamedDocument {
	registry := naming.NewRegistry()
	planned := make([]models.NamedDocument, len(segments))
	for i, seg := range segments {
		text := pdf.SegmentText(pageTexts, seg)
		meta := fam.extractMeta(text)

		if fam.useResolver && p.resolve != nil && meta.Name == "" && meta.Identifier == "" {
			name, id, err := p.resolve(ctx, text)
			if err != nil {
				p.log.Warn("name resolution fallback failed for document %d: %v", i+1, err)
			} else {
				meta.Name = name
				meta.Identifier = id
			}
		}

		name, id := fam.baseFields(meta)
		base := naming.ComposeBase(name, id, naming.Fallback(fam.fallbackPrefix, i+1))
		planned[i] = models.NamedDocument{
			Name:     registry.Unique(base),
			Segment:  seg,
			Metadata: meta,
		}
	}
	return planned
}

// Merge concatenates the sources, in the order given, into a single
// document. One unreadable source fails this merge only.
func (p *Pipeline) Merge(ctx context.Context, sources []models.PdfData) (*models.RunResult, error) {
	merged, err := pdf.Merge(sources)
	if err != nil {
		return nil, err
	}
	pageCount, err := pdf.Validate(merged)
	if err != nil {
		return nil, fmt.Errorf("merged output: %w", err)
	}

	p.log.Info("merged %d documents into %d pages", len(sources), pageCount)

	return &models.RunResult{
		Kind:      "merge",
		Strategy:  "merge",
		PageCount: pageCount,
		Documents: []models.NamedDocument{
			{
				Name:    "Merged",
				Segment: models.Segment{Start: 0, End: pageCount},
				Data:    merged,
			},
		},
	}, nil
}
