package binary

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/hcdl/internal/testutil"
)

func TestGPGVerifierVerify(t *testing.T) {
	signer := testutil.NewSigner(t)
	other := testutil.NewSigner(t)

	keyring, err := ReadKeyring(signer.ArmoredPublicKey())
	if err != nil {
		t.Fatalf("failed to read keyring: %v", err)
	}

	verifier, err := NewGPGVerifier(keyring)
	if err != nil {
		t.Fatalf("NewGPGVerifier() error = %v", err)
	}

	data := []byte("0123abcd  terraform_1.0.0_linux_amd64.zip\n")

	tests := []struct {
		name      string
		data      []byte
		signature []byte
		wantErr   bool
	}{
		{
			name:      "binary_signature",
			data:      data,
			signature: signer.Sign(data),
		},
		{
			name:      "armored_signature",
			data:      data,
			signature: signer.SignArmored(data),
		},
		{
			name:      "tampered_data",
			data:      append([]byte("f"), data...),
			signature: signer.Sign(data),
			wantErr:   true,
		},
		{
			name:      "untrusted_key",
			data:      data,
			signature: other.Sign(data),
			wantErr:   true,
		},
		{
			name:      "garbage_signature",
			data:      data,
			signature: []byte("not a signature"),
			wantErr:   true,
		},
		{
			name:      "empty_signature",
			data:      data,
			signature: nil,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyID, err := verifier.Verify(tt.data, tt.signature)

			if tt.wantErr {
				if !errors.Is(err, ErrSignatureInvalid) {
					t.Errorf("expected ErrSignatureInvalid, got %v", err)
				}
				if keyID != "" {
					t.Errorf("expected no key ID on failure, got %q", keyID)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if keyID != signer.KeyID() {
				t.Errorf("keyID = %q, want %q", keyID, signer.KeyID())
			}
		})
	}
}

func TestNewGPGVerifierEmptyKeyring(t *testing.T) {
	if _, err := NewGPGVerifier(nil); !errors.Is(err, ErrKeyring) {
		t.Errorf("expected ErrKeyring, got %v", err)
	}
}

func TestNewGPGVerifierFromFile(t *testing.T) {
	signer := testutil.NewSigner(t)
	path := filepath.Join(t.TempDir(), "hashicorp.asc")
	if err := os.WriteFile(path, signer.ArmoredPublicKey(), 0644); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	verifier, err := NewGPGVerifierFromFile(path)
	if err != nil {
		t.Fatalf("NewGPGVerifierFromFile() error = %v", err)
	}

	data := []byte("manifest")
	if _, err := verifier.Verify(data, signer.Sign(data)); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	if _, err := NewGPGVerifierFromFile(filepath.Join(t.TempDir(), "missing.asc")); !errors.Is(err, ErrKeyring) {
		t.Errorf("expected ErrKeyring for missing file, got %v", err)
	}
}
