// Package asset opens the renderer's text assets (WGSL shaders and geometry
// files) as UTF-8, dropping a leading byte-order mark when one is present.
package asset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrOpen is returned when an asset file cannot be opened.
var ErrOpen = errors.New("asset: cannot open file")

// File is an open text asset. Reads yield UTF-8 without a byte-order mark.
type File struct {
	io.Reader
	f *os.File
}

// Close closes the underlying file.
func (a *File) Close() error { return a.f.Close() }

// Open opens path for reading. A UTF-16 byte-order mark switches decoding to
// UTF-16; a UTF-8 mark is stripped.
func Open(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // asset paths come from application options
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrOpen, path, err)
	}
	return &File{Reader: NewReader(f), f: f}, nil
}

// NewReader wraps r so that a leading byte-order mark is consumed.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadText reads the whole asset at path into a string.
func ReadText(path string) (string, error) {
	f, err := Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("asset: read %q: %w", path, err)
	}
	return string(data), nil
}
