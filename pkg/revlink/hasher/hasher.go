// Package hasher computes content fingerprints and the hashed filenames
// derived from them.
package hasher

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Algorithm identifies a content hash function.
type Algorithm string

// Supported algorithms.
const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	XXHash Algorithm = "xxhash"
)

// DefaultAlgorithm matches the conventional rev-hash fingerprint.
const DefaultAlgorithm = MD5

// DefaultLength is the number of hex characters kept from the digest.
const DefaultLength = 10

// ErrUnknownAlgorithm is returned for an unsupported algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Algorithms returns the supported algorithm names.
func Algorithms() []Algorithm {
	return []Algorithm{MD5, SHA1, SHA256, XXHash}
}

// ParseAlgorithm parses an algorithm name. An empty string selects DefaultAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultAlgorithm, nil
	case MD5:
		return MD5, nil
	case SHA1:
		return SHA1, nil
	case SHA256:
		return SHA256, nil
	case XXHash, "xxh64":
		return XXHash, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAlgorithm, s)
	}
}

// newHash returns a fresh hash.Hash for the algorithm.
func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil //nolint:gosec // fingerprinting, not security
	case SHA1:
		return sha1.New(), nil //nolint:gosec // fingerprinting, not security
	case SHA256:
		return sha256.New(), nil
	case XXHash:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, a)
	}
}

// Hasher computes truncated hex digests of file content.
// A Hasher is safe for concurrent use.
type Hasher struct {
	algorithm Algorithm
	length    int
}

// New creates a Hasher. A length of 0 selects DefaultLength; a length longer
// than the digest keeps the full digest.
func New(alg Algorithm, length int) (*Hasher, error) {
	if alg == "" {
		alg = DefaultAlgorithm
	}
	if _, err := alg.newHash(); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("hash length must not be negative: %d", length)
	}
	if length == 0 {
		length = DefaultLength
	}
	return &Hasher{algorithm: alg, length: length}, nil
}

// Algorithm returns the hash algorithm in use.
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Length returns the configured digest length in hex characters.
func (h *Hasher) Length() int {
	return h.length
}

// Sum streams r through the hash and returns the truncated hex digest
// along with the number of bytes read.
func (h *Hasher) Sum(r io.Reader) (string, int64, error) {
	hh, err := h.algorithm.newHash()
	if err != nil {
		return "", 0, err
	}

	n, err := io.Copy(hh, r)
	if err != nil {
		return "", n, err
	}

	return h.truncate(hex.EncodeToString(hh.Sum(nil))), n, nil
}

// SumBytes returns the truncated hex digest of data.
func (h *Hasher) SumBytes(data []byte) string {
	// Reading from memory cannot fail and New validated the algorithm.
	sum, _, _ := h.Sum(bytes.NewReader(data))
	return sum
}

func (h *Hasher) truncate(digest string) string {
	if h.length >= len(digest) {
		return digest
	}
	return digest[:h.length]
}

// RevPath inserts "-{sum}" between the base name and the extension of path,
// keeping the directory as given. A name without an extension gets no
// trailing dot: "bin/tool" becomes "bin/tool-{sum}".
func RevPath(path, sum string) string {
	dir, base := splitDir(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	// Dotfiles such as ".env" have no extension, only a name.
	if name == "" {
		name, ext = base, ""
	}

	return dir + name + "-" + sum + ext
}

// splitDir splits path after its final separator, keeping the separator on
// the directory so that relative forms like "./a.css" survive unchanged.
func splitDir(path string) (dir, base string) {
	i := strings.LastIndexAny(path, `/`+string(filepath.Separator))
	if i < 0 {
		return "", path
	}
	return path[:i+1], path[i+1:]
}
