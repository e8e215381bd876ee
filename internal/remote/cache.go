package remote

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// CacheOptions configures curve caching.
type CacheOptions struct {
	// Dir is where downloads are kept. Empty means DefaultCacheDir.
	Dir string

	// Refresh downloads again even when a cached copy exists.
	Refresh bool

	Fetch FetchOptions
}

// DefaultCacheDir returns the default curve cache directory.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "lumen", "curves"), nil
	}
	return filepath.Join(cacheDir, "lumen", "curves"), nil
}

// CacheName returns the path, relative to the cache directory, that a URL
// is cached under. Each URL gets its own directory named by a hash of the
// URL, holding the file under its original name so the curve parser still
// sees suffixes such as ".csv.xz".
func CacheName(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	name := "curve"
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		if base != "." && base != "/" && base != "" {
			name = sanitize(base)
		}
	}
	return filepath.Join(fmt.Sprintf("%x", hash[:16]), name)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// Download fetches rawURL into the cache and returns the local path. An
// existing copy is reused unless opts.Refresh is set.
func Download(ctx context.Context, rawURL string, opts CacheOptions) (string, error) {
	dir := opts.Dir
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	cached := filepath.Join(dir, CacheName(rawURL))
	if err := os.MkdirAll(filepath.Dir(cached), 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	if !opts.Refresh {
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
	}

	data, err := Fetch(ctx, rawURL, opts.Fetch)
	if err != nil {
		return "", fmt.Errorf("failed to download curve: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(cached), ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to write cached curve: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached curve: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached curve: %w", err)
	}
	if err := os.Rename(tmp.Name(), cached); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached curve: %w", err)
	}
	return cached, nil
}
