package slug

import "testing"

// TestGenerate exercises the key generator with the kinds of names
// admins type into quick-add forms and CSV category columns.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Kids Learning", want: "kids-learning"},
		{name: "already a key", input: "kids-learning", want: "kids-learning"},
		{name: "single word", input: "Math", want: "math"},
		{name: "punctuation stripped", input: "Science, Nature & More!", want: "science-nature-more"},
		{name: "parentheses", input: "History (Grade 5)", want: "history-grade-5"},
		{name: "leading and trailing spaces", input: "  animals  ", want: "animals"},
		{name: "consecutive spaces collapsed", input: "world    geography", want: "world-geography"},
		{name: "hyphens collapsed", input: "logic---puzzles", want: "logic-puzzles"},
		{name: "empty string", input: "", want: ""},
		{name: "only special characters", input: "!@#$%", want: ""},
		{name: "numbers kept", input: "Grade 3 Math", want: "grade-3-math"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that a generated key passes through
// unchanged, so stored names can be re-normalized safely.
func TestGenerate_Idempotent(t *testing.T) {
	keys := []string{"kids-learning", "grade-3-math", "a", "123"}
	for _, s := range keys {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result", s, got)
			}
		})
	}
}
