package pipeline

import (
	"bytes"
	"compress/gzip"
	"fmt"
)

// gzipBytes compresses content for the .gz sidecars static hosts serve
// when the client accepts gzip.
func gzipBytes(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := gz.Write(content); err != nil {
		_ = gz.Close()
		return nil, fmt.Errorf("write gzip: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}
