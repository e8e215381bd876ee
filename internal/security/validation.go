// Package security guards the inputs lumen reads from scene files and
// compressed curves.
package security

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrLimitExceeded is returned by a LimitedReader that has more data than
// its limit allows.
var ErrLimitExceeded = errors.New("size limit exceeded")

// ValidateFilePath checks that a relative path taken from a scene file
// stays inside baseDir. Names that merely contain dots, such as
// "led..v2.csv", are fine; ".." path elements are not.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}
	if filepath.IsAbs(filePath) || strings.HasPrefix(filepath.ToSlash(filePath), "/") {
		return fmt.Errorf("absolute path %q not allowed in scene files", filePath)
	}

	for _, part := range strings.Split(filepath.ToSlash(filePath), "/") {
		if part == ".." {
			return fmt.Errorf("path %q leaves the scene directory", filePath)
		}
	}

	base := filepath.Clean(baseDir)
	full := filepath.Join(base, filePath)
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return fmt.Errorf("path %q leaves the scene directory", filePath)
	}
	return nil
}

// SafeUint8 clamps val to [0, 255].
func SafeUint8(val int) uint8 {
	switch {
	case val < 0:
		return 0
	case val > 255:
		return 255
	}
	return uint8(val)
}

// LimitedReader reads at most Remaining bytes from R. Unlike io.LimitReader
// it fails with ErrLimitExceeded instead of truncating silently, so an
// oversized decompressed curve is rejected rather than half-parsed.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		// Input that ends exactly at the limit is allowed.
		var one [1]byte
		n, err := l.R.Read(one[:])
		if n == 0 && err != nil {
			return 0, err
		}
		return 0, ErrLimitExceeded
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader returns a reader that fails after maxBytes.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{R: r, Remaining: maxBytes}
}
