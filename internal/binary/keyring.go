package binary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"go.uber.org/zap"
)

// DefaultKeyURL publishes HashiCorp's release signing key.
const DefaultKeyURL = "https://www.hashicorp.com/.well-known/pgp-key.txt"

// ErrKeyring is returned when no usable public key can be loaded.
var ErrKeyring = errors.New("keyring unavailable")

// Fetcher downloads a URL to a local path.
type Fetcher interface {
	DownloadToFile(ctx context.Context, url, destPath string) error
}

// ReadKeyring parses an armored or binary OpenPGP public keyring.
func ReadKeyring(data []byte) (openpgp.EntityList, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		// Try reading as non-armored keyring
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: read keyring: %v", ErrKeyring, err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("%w: keyring is empty", ErrKeyring)
	}

	return keyring, nil
}

// LoadKeyring reads a keyring file from disk.
func LoadKeyring(path string) (openpgp.EntityList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open keyring: %v", ErrKeyring, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read keyring %s: %v", ErrKeyring, path, err)
	}

	keyring, err := ReadKeyring(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return keyring, nil
}

// EnsureKeyring makes sure a keyring exists at path, fetching it from keyURL
// when it does not. The fetched key is parsed before it is stored so a bad
// response never lands on disk.
func EnsureKeyring(ctx context.Context, f Fetcher, path, keyURL string, logger *zap.Logger) error {
	if fileExists(path) {
		return nil
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create keyring dir: %w", err)
	}

	fetched := path + ".download"
	defer os.Remove(fetched)

	logger.Info("fetching public key", zap.String("url", keyURL), zap.String("path", path))

	if err := f.DownloadToFile(ctx, keyURL, fetched); err != nil {
		return fmt.Errorf("%w: fetch public key: %w", ErrKeyring, err)
	}

	data, err := os.ReadFile(fetched)
	if err != nil {
		return fmt.Errorf("read fetched key: %w", err)
	}

	if _, err := ReadKeyring(data); err != nil {
		return fmt.Errorf("fetched key from %s: %w", keyURL, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write keyring file: %w", err)
	}

	return nil
}
