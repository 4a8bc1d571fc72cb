package security

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "minimum curing period for concrete",
			want:  "minimum curing period for concrete",
		},
		{
			name:  "tags removed",
			input: "<b>M25</b> grade <i>concrete</i>",
			want:  "M25 grade concrete",
		},
		{
			name:  "script body dropped",
			input: "before<script>alert('xss')</script>after",
			want:  "beforeafter",
		},
		{
			name:  "style body dropped",
			input: "a<style>body{color:red}</style>b",
			want:  "ab",
		},
		{
			name:  "entities decoded",
			input: "cover &gt;= 40mm &amp; spacing",
			want:  "cover >= 40mm & spacing",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses whitespace",
			input: "  what   is\n\nthe  cover ",
			want:  "what is the cover",
		},
		{
			name:  "strips markup",
			input: "<img src=x onerror=alert(1)>slab design",
			want:  "slab design",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeTextPreserveFormatting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps single newlines",
			input: "line one\nline two",
			want:  "line one\nline two",
		},
		{
			name:  "caps newline runs at two",
			input: "para one\n\n\n\n\npara two",
			want:  "para one\n\npara two",
		},
		{
			name:  "strips tags but keeps structure",
			input: "<p>first</p>\n\nsecond",
			want:  "first\n\nsecond",
		},
		{
			name:  "trims surrounding whitespace",
			input: "\n\n  question  \n",
			want:  "question",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTextPreserveFormatting(tt.input); got != tt.want {
				t.Errorf("SanitizeTextPreserveFormatting(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
