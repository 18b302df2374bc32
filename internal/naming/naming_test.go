package naming

import (
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain name", "JOHN SMITH", "JOHN_SMITH"},
		{"illegal characters stripped", `A/B\C:D"E*F?G<H>I|J`, "ABCDEFGHIJ"},
		{"whitespace collapsed", "  JANE \t DOE \n ", "JANE_DOE"},
		{"empty", "", ""},
		{"only illegal characters", `\/:*?"<>|`, ""},
		{"dots and dashes survive", "J. SMITH-JONES", "J._SMITH-JONES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestComposeBase(t *testing.T) {
	tests := []struct {
		name     string
		docName  string
		id       string
		fallback string
		expected string
	}{
		{
			name:     "name and identifier",
			docName:  "JOHN SMITH",
			id:       "TP-2024-01",
			fallback: "Policy_1",
			expected: "JOHN_SMITH_TP-2024-01",
		},
		{
			name:     "name only",
			docName:  "JANE DOE",
			fallback: "Policy_2",
			expected: "JANE_DOE",
		},
		{
			name:     "identifier only",
			id:       "AX123456",
			fallback: "Policy_3",
			expected: "AX123456",
		},
		{
			name:     "positional fallback",
			fallback: "Policy_4",
			expected: "Policy_4",
		},
		{
			name:     "name of only illegal characters falls back",
			docName:  `?*|`,
			fallback: "Invoice_1",
			expected: "Invoice_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComposeBase(tt.docName, tt.id, tt.fallback); got != tt.expected {
				t.Errorf("ComposeBase() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRegistryCollisions(t *testing.T) {
	r := NewRegistry()
	got := []string{r.Unique("Policy"), r.Unique("Policy"), r.Unique("Policy")}
	want := []string{"Policy", "Policy_1", "Policy_2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistryInterleavedBaseNames(t *testing.T) {
	r := NewRegistry()
	sequence := []struct {
		base string
		want string
	}{
		{"A", "A"},
		{"B", "B"},
		{"A", "A_1"},
		{"B", "B_1"},
		{"A", "A_2"},
		{"C", "C"},
	}
	for i, step := range sequence {
		if got := r.Unique(step.base); got != step.want {
			t.Errorf("step %d: Unique(%q) = %q, want %q", i, step.base, got, step.want)
		}
	}
}

func TestRegistryIsPerRun(t *testing.T) {
	r1 := NewRegistry()
	r1.Unique("Policy")
	r2 := NewRegistry()
	if got := r2.Unique("Policy"); got != "Policy" {
		t.Errorf("fresh registry returned %q, want bare name", got)
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback("Policy", 3); got != "Policy_3" {
		t.Errorf("Fallback = %q", got)
	}
	if got := Fallback("Invoice", 1); got != "Invoice_1" {
		t.Errorf("Fallback = %q", got)
	}
}
