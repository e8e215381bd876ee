package security

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "plain file", path: "curve.csv"},
		{name: "nested file", path: "spd/green.csv.xz"},
		{name: "double dot in name", path: "led..v2.csv"},
		{name: "dotted directory", path: "spd..old/led.csv"},
		{name: "current dir", path: "./spd/led.csv"},
		{name: "inner traversal that stays inside", path: "spd/../led.csv", wantErr: true},
		{name: "empty", path: "", wantErr: true},
		{name: "traversal", path: "../etc/passwd", wantErr: true},
		{name: "nested traversal", path: "spd/../../etc/passwd", wantErr: true},
		{name: "bare parent", path: "..", wantErr: true},
		{name: "absolute", path: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path, "/scenes")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestLimitedReader(t *testing.T) {
	r := NewLimitedReader(strings.NewReader("0123456789"), 4)
	buf, err := io.ReadAll(r)
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("ReadAll() error = %v, want ErrLimitExceeded", err)
	}
	if !bytes.Equal(buf, []byte("0123")) {
		t.Errorf("read %q before limit, want %q", buf, "0123")
	}
}

func TestLimitedReaderExactLimit(t *testing.T) {
	buf, err := io.ReadAll(NewLimitedReader(strings.NewReader("0123"), 4))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(buf) != "0123" {
		t.Errorf("read %q, want %q", buf, "0123")
	}
}

func TestSafeUint8(t *testing.T) {
	tests := map[int]uint8{-3: 0, 0: 0, 128: 128, 255: 255, 300: 255}
	for in, want := range tests {
		if got := SafeUint8(in); got != want {
			t.Errorf("SafeUint8(%d) = %d, want %d", in, got, want)
		}
	}
}
