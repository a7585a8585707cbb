package dag

import (
	"errors"
	"strings"
	"testing"
)

func TestHashOf(t *testing.T) {
	h := HashOf([]byte("hello"))
	if len(h) != hashStrSize {
		t.Fatalf("len(hash) = %d, want %d", len(h), hashStrSize)
	}
	if h != HashOf([]byte("hello")) {
		t.Fatal("hash should be deterministic")
	}
	if h == HashOf([]byte("hello!")) {
		t.Fatal("different data should hash differently")
	}
	if _, err := ParseHash(h.String()); err != nil {
		t.Fatalf("HashOf output should parse: %v", err)
	}
}

func TestParseHash(t *testing.T) {
	valid := string(HashOf(nil))
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", valid, false},
		{"empty", "", true},
		{"short", valid[:31], true},
		{"long", valid + "0", true},
		{"uppercase", strings.ToUpper(valid), true},
		{"outside alphabet", "w" + valid[1:], true},
		{"newline", valid[:31] + "\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHash(tt.in)
			if tt.wantErr && !errors.Is(err, ErrInvalidHash) {
				t.Fatalf("ParseHash(%q) = %v, want ErrInvalidHash", tt.in, err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("ParseHash(%q): %v", tt.in, err)
			}
		})
	}
}

func TestNewChunk(t *testing.T) {
	ref := HashOf([]byte("child"))
	c := NewChunk([]byte("parent"), []Hash{ref})
	if c.Hash != HashOf([]byte("parent")) {
		t.Fatalf("Hash = %s, want hash of data", c.Hash)
	}
	if len(c.Meta) != 1 || c.Meta[0] != ref {
		t.Fatalf("Meta = %v", c.Meta)
	}

	r := ReadChunk("anything", []byte("data"), nil)
	if r.Hash != "anything" {
		t.Fatal("ReadChunk should keep the given hash")
	}
}
