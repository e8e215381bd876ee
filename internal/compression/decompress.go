// Package compression provides transparent decompression of data files.
package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/lumen/internal/security"
	"github.com/ulikunitz/xz"
)

// Format identifies a compression container.
type Format string

const (
	FormatNone  Format = "none"
	FormatGzip  Format = "gzip"
	FormatXz    Format = "xz"
	FormatBzip2 Format = "bzip2"
)

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicXz    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicBzip2 = []byte{'B', 'Z', 'h'}
)

// Detect identifies the compression format from the file name, falling back
// to the leading magic bytes of data.
func Detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return FormatGzip
	case ".xz":
		return FormatXz
	case ".bz2":
		return FormatBzip2
	}

	switch {
	case bytes.HasPrefix(data, magicXz):
		return FormatXz
	case bytes.HasPrefix(data, magicGzip):
		return FormatGzip
	case bytes.HasPrefix(data, magicBzip2):
		return FormatBzip2
	}
	return FormatNone
}

// TrimExt strips a compression extension from name ("green.csv.xz" -> "green.csv").
func TrimExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".xz", ".bz2":
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// Decompress returns the decoded contents of data, reading at most maxBytes
// of output. Uncompressed input is returned as-is if it fits the limit.
func Decompress(name string, data []byte, maxBytes int64) ([]byte, error) {
	var r io.Reader
	switch Detect(name, data) {
	case FormatGzip:
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	case FormatXz:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	case FormatBzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	default:
		if int64(len(data)) > maxBytes {
			return nil, fmt.Errorf("file exceeds size limit of %d bytes", maxBytes)
		}
		return data, nil
	}

	out, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", name, err)
	}
	return out, nil
}
