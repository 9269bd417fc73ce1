package binary

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrIllegalPath is returned for archive entries that would land outside the
// destination directory.
var ErrIllegalPath = errors.New("illegal file path")

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractZip extracts a .zip archive into destDir and returns the paths it
// wrote. destDir must already exist. Existing files are replaced atomically.
func (e *Extractor) ExtractZip(archivePath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	root := filepath.Clean(destDir)
	var written []string

	for _, f := range r.File {
		// Construct target path
		target := filepath.Join(root, f.Name)

		// Security check: prevent path traversal
		if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return written, fmt.Errorf("%w: %s", ErrIllegalPath, f.Name)
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return written, fmt.Errorf("create directory %s: %w", target, err)
			}

		case mode.IsRegular():
			if err := extractZipFile(f, target); err != nil {
				return written, err
			}
			written = append(written, target)

		default:
			// Skip symlinks and other special entries
			continue
		}
	}

	return written, nil
}

// extractZipFile writes one entry to target through a sibling temp file.
func extractZipFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		// Archives built without unix attributes carry no mode
		perm = 0755
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s in archive: %w", f.Name, err)
	}
	defer src.Close()

	tmpPath := target + ".tmp"
	outFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.Copy(outFile, src); err != nil {
		outFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write file %s: %w", target, err)
	}

	if err := outFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close file %s: %w", target, err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", target, err)
	}

	return nil
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	// Set permissions to 0755 (rwxr-xr-x)
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
