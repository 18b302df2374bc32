// Package naming turns extracted metadata into filesystem-safe, unique
// filename stems. Uniqueness is guaranteed per run by a collision
// counter keyed on the composed base name.
package naming

import (
	"fmt"
	"strings"
)

// illegalChars are stripped from composed names: they are invalid in at
// least one target filesystem.
const illegalChars = `\/:"*?<>|`

// ComposeBase builds the filename stem for one document: name_id when
// both are present, whichever one is present otherwise, or the
// positional fallback (e.g. "Policy_3") when neither was found. Which
// metadata fields feed name and id is the document family's choice.
func ComposeBase(name, id, fallback string) string {
	name = Sanitize(name)
	id = Sanitize(id)

	switch {
	case name != "" && id != "":
		return name + "_" + id
	case name != "":
		return name
	case id != "":
		return id
	default:
		return fallback
	}
}

// Fallback formats the positional stem used when a document yielded no
// name or identifier. n is 1-based.
func Fallback(prefix string, n int) string {
	return fmt.Sprintf("%s_%d", prefix, n)
}

// Sanitize strips characters illegal in filenames and collapses runs of
// whitespace into single underscores.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	// Fields collapses any run of whitespace, then underscores join.
	return strings.Join(strings.Fields(b.String()), "_")
}

// Registry hands out unique names within one run. The first occurrence
// of a base name is returned bare; later occurrences get _1, _2, ...
// suffixes. A suffix is never reused for a base name, even when
// distinct base names interleave.
type Registry struct {
	seen map[string]int
}

// NewRegistry creates an empty per-run registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]int)}
}

// Unique registers base and returns the name to use for this document.
func (r *Registry) Unique(base string) string {
	n, ok := r.seen[base]
	r.seen[base] = n + 1
	if !ok {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}
