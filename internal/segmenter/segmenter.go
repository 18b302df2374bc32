// Package segmenter partitions an ordered page stream into contiguous
// per-document page ranges. Three strategies are supported: a configured
// trigger keyword, a fixed page count, and header-repeat detection for
// invoice batches. Strategies operate on extracted page text only; they
// never touch PDF bytes.
package segmenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// Strategy selects how page boundaries are detected. The set is closed:
// there is no extension point beyond these three.
type Strategy int

const (
	// StrategyTrigger starts a new document on every page whose text
	// contains the configured trigger keyword.
	StrategyTrigger Strategy = iota
	// StrategyFixedCount cuts the input into chunks of PagesPerDocument
	// pages, the last chunk possibly shorter.
	StrategyFixedCount
	// StrategyHeaderRepeat is the invoice variant of trigger matching:
	// the trigger is supplied at run time and a zero-hit scan is a hard
	// failure.
	StrategyHeaderRepeat
)

func (s Strategy) String() string {
	switch s {
	case StrategyTrigger:
		return "trigger"
	case StrategyFixedCount:
		return "fixed"
	case StrategyHeaderRepeat:
		return "header-repeat"
	default:
		return "unknown"
	}
}

// ErrNoSegmentsFound reports that the trigger text never matched any
// page. Callers surface this as an empty user-visible result, not a
// crash, and must not fall back to a single full-range segment.
var ErrNoSegmentsFound = errors.New("no segments found: trigger text did not match any page")

// InvalidConfigError reports a configuration rejected before any
// segmentation work starts.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid segmenter configuration: %s", e.Reason)
}

// Config carries the strategy selection plus its parameters.
type Config struct {
	Strategy Strategy
	// Trigger is the case-insensitive substring marking the first page
	// of a document. Used by StrategyTrigger and StrategyHeaderRepeat.
	Trigger string
	// PagesPerDocument is the chunk size for StrategyFixedCount.
	PagesPerDocument int
}

// Validate rejects degenerate configurations before segmentation begins.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyTrigger, StrategyHeaderRepeat:
		if strings.TrimSpace(c.Trigger) == "" {
			return &InvalidConfigError{Reason: "trigger text must not be empty"}
		}
	case StrategyFixedCount:
		if c.PagesPerDocument <= 0 {
			return &InvalidConfigError{Reason: fmt.Sprintf("pages per document must be positive, got %d", c.PagesPerDocument)}
		}
	default:
		return &InvalidConfigError{Reason: fmt.Sprintf("unknown strategy %d", int(c.Strategy))}
	}
	return nil
}

// Split partitions the page stream into segments. pageTexts holds the
// extracted plain text of each page in order; a page whose extraction
// failed contributes an empty string and simply never matches a trigger.
//
// Returned segments are contiguous, non-overlapping and ascending. On a
// trigger strategy, pages before the first trigger hit are not part of
// any segment; this matches the long-standing behavior of the tool and
// is deliberate.
func Split(pageTexts []string, cfg Config) ([]models.Segment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(pageTexts) == 0 {
		return nil, ErrNoSegmentsFound
	}

	switch cfg.Strategy {
	case StrategyFixedCount:
		return splitFixed(len(pageTexts), cfg.PagesPerDocument), nil
	case StrategyTrigger, StrategyHeaderRepeat:
		return splitByTrigger(pageTexts, cfg.Trigger)
	}
	// Unreachable after Validate.
	return nil, &InvalidConfigError{Reason: "unknown strategy"}
}

// splitFixed produces [0,k), [k,2k), ... with a possibly shorter tail.
func splitFixed(pageCount, k int) []models.Segment {
	segments := make([]models.Segment, 0, (pageCount+k-1)/k)
	for start := 0; start < pageCount; start += k {
		end := start + k
		if end > pageCount {
			end = pageCount
		}
		segments = append(segments, models.Segment{Start: start, End: end})
	}
	return segments
}

// splitByTrigger scans for trigger pages first, then computes ranges
// [trigger_i, trigger_i+1), the last range extending to end of input.
func splitByTrigger(pageTexts []string, trigger string) ([]models.Segment, error) {
	needle := strings.ToUpper(trigger)
	var hits []int
	for i, text := range pageTexts {
		if strings.Contains(strings.ToUpper(text), needle) {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return nil, ErrNoSegmentsFound
	}

	segments := make([]models.Segment, len(hits))
	for i, start := range hits {
		end := len(pageTexts)
		if i+1 < len(hits) {
			end = hits[i+1]
		}
		segments[i] = models.Segment{Start: start, End: end}
	}
	return segments, nil
}
