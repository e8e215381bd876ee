package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/spd.csv": true,
		"HTTP://example.com/x":        true,
		"spd/qh9g.csv.xz":             false,
		"/abs/path.csv":               false,
		"ftp://example.com/x":         false,
		"https:///nohost":             false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFetch(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("400,1\n500,2\n"))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL+"/spd.csv", FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "400,1\n500,2\n" {
		t.Errorf("Fetch() = %q", data)
	}
	if !strings.HasPrefix(agent, "lumen/") {
		t.Errorf("User-Agent = %q, want lumen/ prefix", agent)
	}

	if _, err := Fetch(context.Background(), srv.URL+"/missing", FetchOptions{}); err == nil {
		t.Error("Fetch() of 404 should fail")
	}
	if _, err := Fetch(context.Background(), "spd.csv", FetchOptions{}); err == nil {
		t.Error("Fetch() of a relative path should fail")
	}
}

func TestFetchMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Chunked, so the size is only known once read.
		w.(http.Flusher).Flush()
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL, FetchOptions{MaxBytes: 16})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Fetch() error = %v, want ErrTooLarge", err)
	}
	if _, err := Fetch(context.Background(), srv.URL, FetchOptions{MaxBytes: 64}); err != nil {
		t.Errorf("Fetch() at the limit error = %v", err)
	}
}

func TestCacheName(t *testing.T) {
	a := CacheName("https://example.com/curves/qh9g.csv.xz?rev=2")
	if filepath.Base(a) != "qh9g.csv.xz" {
		t.Errorf("CacheName() = %q, want compound suffix kept", a)
	}
	if b := CacheName("https://example.com/curves/qh9g.csv.xz?rev=3"); a == b {
		t.Error("CacheName() should differ for different URLs")
	}
	if c := CacheName("https://example.com/"); filepath.Base(c) != "curve" {
		t.Errorf("CacheName() without a file = %q", c)
	}
	if d := CacheName("https://example.com/a%20b.csv"); filepath.Base(d) != "a_b.csv" {
		t.Errorf("CacheName() = %q, want sanitized", d)
	}
}

func TestDownload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("450,1\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	url := srv.URL + "/blue.csv"

	path, err := Download(context.Background(), url, CacheOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if filepath.Base(path) != "blue.csv" || !strings.HasPrefix(path, dir) {
		t.Errorf("Download() path = %q, want inside %q", path, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "450,1\n" {
		t.Fatalf("cached file = %q, %v", data, err)
	}

	if _, err := Download(context.Background(), url, CacheOptions{Dir: dir}); err != nil {
		t.Fatalf("Download() second call error = %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1 (cached)", n)
	}

	if _, err := Download(context.Background(), url, CacheOptions{Dir: dir, Refresh: true}); err != nil {
		t.Fatalf("Download() refresh error = %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits = %d, want 2 after refresh", n)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("cache entry has %d files, want 1", len(entries))
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := DefaultCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(dir, filepath.Join("lumen", "curves")) {
		t.Errorf("DefaultCacheDir() = %q, want .../lumen/curves", dir)
	}
}
