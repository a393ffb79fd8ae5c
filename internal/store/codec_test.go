package store

import (
	"strings"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"<p>short</p>",
		"<h1>Chapter One</h1>" + strings.Repeat("<p>The river ran on and on.</p>", 500),
	}

	for _, content := range cases {
		compressed, err := CompressContent(content)
		if err != nil {
			t.Fatalf("CompressContent: %v", err)
		}
		got, err := DecompressContent(compressed)
		if err != nil {
			t.Fatalf("DecompressContent: %v", err)
		}
		if got != content {
			t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(content))
		}
	}
}

func TestCompressShrinksRepetitiveContent(t *testing.T) {
	content := strings.Repeat("<p>Water does not resist. Water flows.</p>", 200)
	compressed, err := CompressContent(content)
	if err != nil {
		t.Fatalf("CompressContent: %v", err)
	}
	if len(compressed) >= len(content) {
		t.Errorf("compressed %d bytes to %d, expected a reduction", len(content), len(compressed))
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	if _, err := DecompressContent([]byte("definitely not gzip")); err == nil {
		t.Error("expected an error for non-gzip input")
	}
}
