package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Version snapshots are stored gzip-compressed; full drafts compress well
// and history is append-only, so the write-side cost is paid once.

// CompressContent gzips a snapshot's content for storage.
func CompressContent(content string) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(content)); err != nil {
		return nil, fmt.Errorf("compress version content: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress version content: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressContent restores a snapshot's content on read.
func DecompressContent(compressed []byte) (string, error) {
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("decompress version content: %w", err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decompress version content: %w", err)
	}
	return string(raw), nil
}
