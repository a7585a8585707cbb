package dag

import (
	"encoding/base32"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// hashSize is the number of digest bytes kept; 20 bytes encode to exactly
// 32 base32 characters.
const (
	hashSize    = 20
	hashStrSize = 32
)

var ErrInvalidHash = errors.New("dag: invalid hash")

var hashEncoding = base32.NewEncoding("0123456789abcdefghijklmnopqrstuv").WithPadding(base32.NoPadding)

// Hash identifies a chunk by its content.
type Hash string

// HashOf returns the content hash of data.
func HashOf(data []byte) Hash {
	sum := blake2b.Sum256(data)
	return Hash(hashEncoding.EncodeToString(sum[:hashSize]))
}

// ParseHash validates s as a chunk hash.
func ParseHash(s string) (Hash, error) {
	if len(s) != hashStrSize {
		return "", fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidHash, s, len(s), hashStrSize)
	}
	b, err := hashEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidHash, s, err)
	}
	if len(b) != hashSize {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	return Hash(s), nil
}

func (h Hash) String() string {
	return string(h)
}

func (h Hash) valid() error {
	_, err := ParseHash(string(h))
	return err
}
