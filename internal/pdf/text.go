package pdf

import (
	"bytes"
	"fmt"

	ledong "github.com/ledongthuc/pdf"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// ExtractPageTexts returns the plain text of every page in order. A page
// whose text layer is missing or unreadable contributes an empty string;
// the number of such pages is returned alongside so callers can report
// degraded extraction in aggregate. Only a document-level parse failure
// is an error.
func ExtractPageTexts(data models.PdfData) ([]string, int, error) {
	reader, err := ledong.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	pageCount := reader.NumPage()
	texts := make([]string, pageCount)
	failures := 0
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			failures++
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			failures++
			continue
		}
		texts[i-1] = text
	}
	return texts, failures, nil
}

// SegmentText concatenates the extracted text of the pages a segment
// covers, in page order.
func SegmentText(pageTexts []string, seg models.Segment) string {
	var b bytes.Buffer
	for i := seg.Start; i < seg.End && i < len(pageTexts); i++ {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pageTexts[i])
	}
	return b.String()
}
