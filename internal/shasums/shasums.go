// Package shasums checks downloaded files against a SHA256SUMS manifest.
//
// A manifest is a line oriented listing of "<hex-digest> <filename>" pairs as
// published next to every HashiCorp release. Lookups match on the trailing
// bytes of a line, so manifests that prefix filenames with a directory still
// resolve. Matching is case-sensitive and the first matching line wins.
//
// Suffix matching means a query for "foo.zip" also matches a line for
// "old_foo.zip". Release manifests do not contain such pairs and the behavior
// is kept as is.
package shasums

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrShasumNotFound is returned when the manifest has no entry for a file.
var ErrShasumNotFound = errors.New("shasum not found")

// Checksum is the verdict of comparing a file digest against the manifest.
type Checksum int

const (
	// OK means the computed digest equals the manifest entry.
	OK Checksum = iota
	// Bad means the computed digest differs from the manifest entry.
	Bad
)

// String returns the string representation of the verdict
func (c Checksum) String() string {
	switch c {
	case OK:
		return "OK"
	case Bad:
		return "Bad"
	default:
		return "Unknown"
	}
}

// File is a downloaded artifact that can be checked against a manifest.
// Name is the manifest-facing filename.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// Shasums holds the content of a checksum manifest.
type Shasums struct {
	content string
}

// New creates a manifest from raw SHA256SUMS content.
func New(content string) *Shasums {
	return &Shasums{content: content}
}

// Content returns the manifest text unchanged.
func (s *Shasums) Content() string {
	return s.content
}

// Shasum returns the expected digest for filename.
func (s *Shasums) Shasum(filename string) (string, bool) {
	for _, line := range strings.Split(s.content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasSuffix(line, filename) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			// Only reachable with an empty filename against a blank line.
			continue
		}

		return fields[0], true
	}

	return "", false
}

// Check hashes f and compares the digest against the manifest entry for
// f.Name(). A missing entry or an unreadable file is an error; a differing
// digest is the Bad verdict.
func (s *Shasums) Check(f File) (Checksum, error) {
	filename := f.Name()

	expected, ok := s.Shasum(filename)
	if !ok {
		return Bad, fmt.Errorf("couldn't find shasum for %s: %w", filename, ErrShasumNotFound)
	}

	r, err := f.Open()
	if err != nil {
		return Bad, fmt.Errorf("open %s: %w", filename, err)
	}
	defer r.Close()

	actual, err := Sum(r)
	if err != nil {
		return Bad, fmt.Errorf("hash %s: %w", filename, err)
	}

	if actual != expected {
		return Bad, nil
	}

	return OK, nil
}

// Sum streams r through SHA-256 and returns the lowercase hex digest.
func Sum(r io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
