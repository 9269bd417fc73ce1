package shasums

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
)

const testShasum = "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"

// emptySHA256 is the digest of zero bytes
const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

type memFile struct {
	name    string
	content string
	openErr error
}

func (f *memFile) Name() string { return f.name }

func (f *memFile) Open() (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestContent(t *testing.T) {
	content := fmt.Sprintf("%s %s", testShasum, "test")
	s := New(content)

	if s.Content() != content {
		t.Errorf("content mismatch:\ngot:  %q\nwant: %q", s.Content(), content)
	}
}

func TestShasum(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		want     string
		wantOK   bool
	}{
		{
			name:     "single_entry",
			content:  fmt.Sprintf("%s %s", testShasum, "test"),
			filename: "test",
			want:     testShasum,
			wantOK:   true,
		},
		{
			name: "multiple_entries",
			content: "aaaa  terraform_0.12.26_darwin_amd64.zip\n" +
				"bbbb  terraform_0.12.26_linux_amd64.zip\n" +
				"cccc  terraform_0.12.26_linux_arm.zip\n",
			filename: "terraform_0.12.26_linux_amd64.zip",
			want:     "bbbb",
			wantOK:   true,
		},
		{
			name:     "directory_prefix",
			content:  "abcd  build/foo.zip\n",
			filename: "foo.zip",
			want:     "abcd",
			wantOK:   true,
		},
		{
			name:     "first_match_wins",
			content:  "1111  a/foo.zip\n2222  b/foo.zip\n",
			filename: "foo.zip",
			want:     "1111",
			wantOK:   true,
		},
		{
			name:     "suffix_false_positive_is_kept",
			content:  "1111  old_foo.zip\n2222  foo.zip\n",
			filename: "foo.zip",
			want:     "1111",
			wantOK:   true,
		},
		{
			name:     "crlf_line_endings",
			content:  "1111  foo.zip\r\n2222  bar.zip\r\n",
			filename: "foo.zip",
			want:     "1111",
			wantOK:   true,
		},
		{
			name:     "case_sensitive",
			content:  "abcd  foo.zip\n",
			filename: "FOO.zip",
			wantOK:   false,
		},
		{
			name:     "not_listed",
			content:  "abcd  foo.zip\n",
			filename: "bar.zip",
			wantOK:   false,
		},
		{
			name:     "empty_manifest",
			content:  "",
			filename: "foo.zip",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := New(tt.content).Shasum(tt.filename)

			if ok != tt.wantOK {
				t.Fatalf("Shasum(%q) found = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Shasum(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestShasumEveryListedFile(t *testing.T) {
	files := []string{
		"vault_1.4.2_freebsd_386.zip",
		"vault_1.4.2_linux_amd64.zip",
		"vault_1.4.2_openbsd_amd64.zip",
		"vault_1.4.2_solaris_amd64.zip",
		"vault_1.4.2_windows_386.zip",
	}

	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%s  %s\n", sha256Hex(f), f)
	}
	s := New(b.String())

	for _, f := range files {
		got, ok := s.Shasum(f)
		if !ok {
			t.Errorf("expected entry for %s", f)
			continue
		}
		if got != sha256Hex(f) {
			t.Errorf("Shasum(%s) = %s, want %s", f, got, sha256Hex(f))
		}
	}

	if _, ok := s.Shasum("vault_1.4.2_darwin_amd64.zip"); ok {
		t.Error("expected no entry for unlisted file")
	}
}

func TestCheck(t *testing.T) {
	content := "Hello, World!"

	tests := []struct {
		name     string
		manifest string
		file     *memFile
		want     Checksum
	}{
		{
			name:     "ok",
			manifest: fmt.Sprintf("%s %s", sha256Hex(content), "test"),
			file:     &memFile{name: "test", content: content},
			want:     OK,
		},
		{
			name:     "bad",
			manifest: fmt.Sprintf("%s %s", strings.Repeat("bad", 21)+"b", "test"),
			file:     &memFile{name: "test", content: content},
			want:     Bad,
		},
		{
			name:     "single_byte_altered",
			manifest: fmt.Sprintf("%s %s", sha256Hex(content), "test"),
			file:     &memFile{name: "test", content: "Hello, World?"},
			want:     Bad,
		},
		{
			name:     "empty_file",
			manifest: fmt.Sprintf("%s %s", emptySHA256, "empty"),
			file:     &memFile{name: "empty"},
			want:     OK,
		},
		{
			name:     "uppercase_digest_is_not_normalized",
			manifest: fmt.Sprintf("%s %s", strings.ToUpper(sha256Hex(content)), "test"),
			file:     &memFile{name: "test", content: content},
			want:     Bad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.manifest).Check(tt.file)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckMissingShasum(t *testing.T) {
	s := New(fmt.Sprintf("%s %s", testShasum, "foo.zip"))

	_, err := s.Check(&memFile{name: "FOO.zip", content: "x"})
	if err == nil {
		t.Fatal("expected error but got none")
	}

	if !errors.Is(err, ErrShasumNotFound) {
		t.Errorf("expected ErrShasumNotFound, got %v", err)
	}

	if !strings.Contains(err.Error(), "FOO.zip") {
		t.Errorf("error should name the missing file, got %q", err.Error())
	}
}

func TestCheckOpenFailure(t *testing.T) {
	s := New(fmt.Sprintf("%s %s", testShasum, "test"))

	_, err := s.Check(&memFile{name: "test", openErr: os.ErrNotExist})
	if err == nil {
		t.Fatal("expected error but got none")
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}

	if errors.Is(err, ErrShasumNotFound) {
		t.Error("open failure must not be reported as a missing shasum")
	}
}

func TestSum(t *testing.T) {
	got, err := Sum(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}

	if got != emptySHA256 {
		t.Errorf("Sum(empty) = %s, want %s", got, emptySHA256)
	}

	if len(got) != 64 {
		t.Errorf("expected 64-character hex string, got %d characters", len(got))
	}
}

func TestChecksumString(t *testing.T) {
	tests := []struct {
		c    Checksum
		want string
	}{
		{OK, "OK"},
		{Bad, "Bad"},
		{Checksum(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Checksum(%d).String() = %q, want %q", int(tt.c), got, tt.want)
		}
	}
}
