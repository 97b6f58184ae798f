// internal/service/zip.go
package service

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// zipBuilder accumulates entries into an in-memory zip archive. Entry names
// are taken as given; two entries may share a name when their source keys
// share a basename.
type zipBuilder struct {
	buf *bytes.Buffer
	zw  *zip.Writer
}

func newZipBuilder() *zipBuilder {
	buf := &bytes.Buffer{}
	return &zipBuilder{
		buf: buf,
		zw:  zip.NewWriter(buf),
	}
}

func (b *zipBuilder) Add(name string, r io.Reader) error {
	w, err := b.zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", name, err)
	}
	return nil
}

func (b *zipBuilder) Bytes() ([]byte, error) {
	if err := b.zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}
	return b.buf.Bytes(), nil
}
