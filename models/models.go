package models

// PdfData is the raw bytes of one source PDF.
type PdfData []byte

// Segment is a contiguous half-open page range [Start, End) within a
// source document, 0-based. A segment never covers zero pages.
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Pages returns the number of pages covered by the segment.
func (s Segment) Pages() int {
	return s.End - s.Start
}

// Metadata holds the fields scraped from one document's text. Unfound
// fields are empty strings, never omitted, so downstream formatting can
// rely on every key being present. MemberCount is kept as a decimal
// string for the same reason.
type Metadata struct {
	Name           string `json:"name"`
	Identifier     string `json:"identifier"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	DateOfBirth    string `json:"date_of_birth"`
	PassportNumber string `json:"passport_number"`
	InvoiceNumber  string `json:"invoice_number"`
	MemberCount    string `json:"member_count"`
	FirstMember    string `json:"first_member"`
}

// NamedDocument is the terminal artifact of one split: a unique filename
// stem, the page range it came from, the scraped metadata, and the
// rendered single-document PDF.
type NamedDocument struct {
	Name     string   `json:"name"`
	Segment  Segment  `json:"segment"`
	Metadata Metadata `json:"metadata"`
	Data     PdfData  `json:"-"`
}

// RunResult is everything one run produced.
type RunResult struct {
	Kind         string          `json:"kind"` // "policy", "invoice" or "merge"
	Strategy     string          `json:"strategy"`
	PageCount    int             `json:"page_count"`
	TextFailures int             `json:"text_failures"`
	Documents    []NamedDocument `json:"documents"`
}

// RunInfo is the stored summary of a run, as listed by the store.
type RunInfo struct {
	RunID         string `json:"run_id"`
	Kind          string `json:"kind"`
	Strategy      string `json:"strategy"`
	PageCount     int    `json:"page_count"`
	TextFailures  int    `json:"text_failures"`
	DocumentCount int    `json:"document_count"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// SourceInfo says where a source PDF comes from. Exactly one of the
// fields is set.
type SourceInfo struct {
	URL     string `json:"url,omitempty"`
	RawData []byte `json:"raw_data,omitempty"`
}
