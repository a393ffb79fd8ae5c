package store

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"heading wins", "<h1>My Essay</h1><p>body text</p>", "My Essay"},
		{"falls back to text", "<p>Just a paragraph of prose.</p>", "Just a paragraph of prose."},
		{"empty content", "", "Untitled"},
		{"whitespace only", "<p>   </p>", "Untitled"},
		{"long text truncated", "<p>" + strings.Repeat("a", 80) + "</p>", strings.Repeat("a", 40)},
		{"multibyte truncated on rune boundary", "<p>" + strings.Repeat("あ", 60) + "</p>", strings.Repeat("あ", 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.content); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestDerivePreview(t *testing.T) {
	if got := DerivePreview(""); got != "Empty draft..." {
		t.Errorf("empty preview = %q", got)
	}
	if got := DerivePreview("<p>short</p>"); got != "short" {
		t.Errorf("short preview = %q", got)
	}

	long := "<p>" + strings.Repeat("b", 150) + "</p>"
	got := DerivePreview(long)
	if got != strings.Repeat("b", 100)+"..." {
		t.Errorf("long preview = %q", got)
	}

	multibyte := "<p>" + strings.Repeat("ü", 150) + "</p>"
	got = DerivePreview(multibyte)
	if got != strings.Repeat("ü", 100)+"..." {
		t.Errorf("multibyte preview = %q", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("preview is not valid UTF-8: %q", got)
	}
}

func TestCountWords(t *testing.T) {
	if got := CountWords("<h1>Title</h1><p>two more words</p>"); got != 4 {
		t.Errorf("CountWords = %d, want 4", got)
	}
	if got := CountWords(""); got != 0 {
		t.Errorf("CountWords(empty) = %d, want 0", got)
	}
}
