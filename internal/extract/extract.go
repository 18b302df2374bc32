// Package extract derives document metadata from the concatenated plain
// text of one segment's pages. Every field is scraped by an ordered
// chain of matchers tried in sequence, which tolerates the known source
// layout families without classifying the layout up front. Extraction
// is pure: no I/O, and malformed or empty text yields empty fields, not
// errors.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// cardTitle is the heading printed at the top of a protection card page.
// It doubles as the default segmentation trigger and as the anchor for
// the last-resort identifier matcher.
const cardTitle = "TRAVEL PROTECTION CARD"

// matcher scrapes one field candidate from text, returning "" on no
// match. Chains are ordered lists of matchers where the first non-empty
// result wins.
type matcher func(text string) string

func firstMatch(text string, chain ...matcher) string {
	for _, m := range chain {
		if v := m(text); v != "" {
			return v
		}
	}
	return ""
}

var (
	reInsuredName   = regexp.MustCompile(`(?i)insured\s+name\s*[:\-]\s*([^\n]+)`)
	reTravellerLine = regexp.MustCompile(`(?i)traveller[^\n]*\n[^\S\n]*([^\n]+)`)
	reGenericName   = regexp.MustCompile(`(?i)\bname\b\s*[:\-]?\s*([^\n]+)`)
	reNameOfPhrase  = regexp.MustCompile(`(?i)\bname\s+of\b`)

	reCertificateNo = regexp.MustCompile(`(?i)certificate\s*no\b\.?\s*[:\-]?\s*([A-Za-z0-9/\-]+)`)
	reAssistNo      = regexp.MustCompile(`(?i)assist\s*no\b\.?\s*[:\-]?\s*([A-Za-z0-9/\-]+)`)
	reAfterCardLine = regexp.MustCompile(`(?i)` + cardTitle + `[^\n]*\n[^\S\n]*([^\n]+)`)

	reCommencement = regexp.MustCompile(`(?i)commencement\s+date\s*:\s*from\s*:\s*(\S+)\s+end\s+date\s*:\s*(\S+)`)
	reTwoLineDates = regexp.MustCompile(`(?is)start\s+date\s*\n\s*(\S+).*?end\s+date\s*\n\s*(\S+)`)
	reTravelDates  = regexp.MustCompile(`(?i)date\s+of\s+your\s+travel\s*:\s*(\S+)\s+to\s+(\S+)`)

	reDateOfBirth = regexp.MustCompile(`(?i)date\s+of\s+birth\s*[:\-]\s*(\S+)`)
	rePassportNo  = regexp.MustCompile(`(?i)passport\s*(?:no\.?|number)?\s*[:\-]\s*([A-Za-z0-9]+)`)

	// Same-line only: "invoice" at a line end followed by "no..." on the
	// next line is a header, not a label.
	reInvoiceNo = regexp.MustCompile(`(?i)invoice[ \t]*no\b\.?[ \t]*[:\-]?[ \t]*(\S+)`)
	// One traveller/member row in an invoice table: serial number,
	// upper-case name tokens, then at least one more column.
	reMemberRow   = regexp.MustCompile(`^\s*(\d+)[.)]?\s+([A-Z][A-Z.'\- ]*[A-Z.])\s+\S+`)
	reTotalAmount = regexp.MustCompile(`(?i)total\s+amount`)

	reNameToken = regexp.MustCompile(`^[A-Za-z][A-Za-z.'\-]*$`)
	reHasDigit  = regexp.MustCompile(`\d`)
)

// nameStopWords truncate the token scan when cleaning a raw name
// capture. They mark the start of a neighboring field that bled into
// the same line.
var nameStopWords = map[string]bool{
	"DATE":   true,
	"BIRTH":  true,
	"DOB":    true,
	"OF":     true,
	"ASSIST": true,
}

// Policy extracts the policy-family fields from segment text.
func Policy(text string) models.Metadata {
	var meta models.Metadata
	meta.Name = firstMatch(text, insuredNameMatcher, travellerLineMatcher, genericNameMatcher)
	meta.Identifier = firstMatch(text, chainIdentifier(reCertificateNo), chainIdentifier(reAssistNo), chainIdentifier(reAfterCardLine))
	meta.StartDate, meta.EndDate = extractDates(text)
	meta.DateOfBirth = submatch(reDateOfBirth, text)
	meta.PassportNumber = submatch(rePassportNo, text)
	return meta
}

// Invoice extracts the invoice-family fields from segment text.
func Invoice(text string) models.Metadata {
	var meta models.Metadata
	meta.InvoiceNumber = submatch(reInvoiceNo, text)
	count, first := memberRows(text)
	if count > 0 {
		meta.MemberCount = strconv.Itoa(count)
	}
	meta.FirstMember = first
	return meta
}

func submatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func insuredNameMatcher(text string) string {
	return cleanName(submatch(reInsuredName, text))
}

func travellerLineMatcher(text string) string {
	return cleanName(submatch(reTravellerLine, text))
}

// genericNameMatcher accepts a bare "Name:" label but skips lines where
// the label is part of a "Name of ..." phrase, which shows up in table
// headers and would otherwise capture the header's remainder.
func genericNameMatcher(text string) string {
	for _, line := range strings.Split(text, "\n") {
		m := reGenericName.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if reNameOfPhrase.MatchString(line) {
			continue
		}
		return cleanName(m[1])
	}
	return ""
}

// cleanName filters a raw capture down to name-shaped tokens. Tokens
// containing digits are dropped, a stop word truncates the scan, and
// anything not alphabetic-name shaped is skipped. If filtering leaves
// nothing, the trimmed raw capture is kept rather than losing the field
// entirely.
func cleanName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var kept []string
	for _, token := range strings.Fields(raw) {
		if nameStopWords[strings.ToUpper(strings.Trim(token, ".,:"))] {
			break
		}
		if reHasDigit.MatchString(token) {
			continue
		}
		token = strings.Trim(token, ",:")
		if reNameToken.MatchString(token) {
			kept = append(kept, token)
		}
	}
	if len(kept) == 0 {
		return raw
	}
	return strings.Join(kept, " ")
}

// chainIdentifier wraps an identifier regexp with the shared acceptance
// gate: candidates shorter than 5 characters or without a digit are
// rejected as false positives (stray column labels, page furniture).
func chainIdentifier(re *regexp.Regexp) matcher {
	return func(text string) string {
		candidate := submatch(re, text)
		candidate = strings.TrimSpace(candidate)
		if len(candidate) < 5 || !reHasDigit.MatchString(candidate) {
			return ""
		}
		return candidate
	}
}

func extractDates(text string) (start, end string) {
	for _, re := range []*regexp.Regexp{reCommencement, reTwoLineDates, reTravelDates} {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
	}
	return "", ""
}

// memberRows scans the invoice table region line by line for serial
// numbered traveller rows. Only text before the "Total Amount" marker
// is considered so footer lines cannot match. The count is the maximum
// serial number seen, not the number of rows matched: a row the text
// layer dropped still shifts the serials of the rows around it, and the
// maximum stays correct. The first member is the name at the minimum
// serial, tolerating out-of-order rows.
func memberRows(text string) (count int, first string) {
	if loc := reTotalAmount.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	minSerial := -1
	for _, line := range strings.Split(text, "\n") {
		m := reMemberRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		serial, err := strconv.Atoi(m[1])
		if err != nil || serial <= 0 {
			continue
		}
		if serial > count {
			count = serial
		}
		if minSerial == -1 || serial < minSerial {
			minSerial = serial
			first = strings.TrimSpace(m[2])
		}
	}
	return count, first
}
