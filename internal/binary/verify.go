package binary

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

var (
	// ErrSignatureInvalid means the manifest signature did not verify.
	ErrSignatureInvalid = errors.New("signature verification failed")
	// ErrSignatureRequired means verification was requested without a verifier.
	ErrSignatureRequired = errors.New("signature verification required but no verifier configured")
	// ErrSignatureMissing means the detached signature could not be obtained.
	ErrSignatureMissing = errors.New("signature missing")
)

// SignatureVerifier authenticates a detached signature over data. It returns
// the ID of the signing key.
type SignatureVerifier interface {
	Verify(data, signature []byte) (string, error)
}

// GPGVerifier checks detached OpenPGP signatures against a fixed keyring.
type GPGVerifier struct {
	keyring openpgp.EntityList
}

// NewGPGVerifier creates a verifier trusting the keys in keyring.
func NewGPGVerifier(keyring openpgp.EntityList) (*GPGVerifier, error) {
	if len(keyring) == 0 {
		return nil, fmt.Errorf("%w: keyring is empty", ErrKeyring)
	}
	return &GPGVerifier{keyring: keyring}, nil
}

// NewGPGVerifierFromFile loads the keyring at path.
func NewGPGVerifierFromFile(path string) (*GPGVerifier, error) {
	keyring, err := LoadKeyring(path)
	if err != nil {
		return nil, err
	}
	return NewGPGVerifier(keyring)
}

// Verify implements SignatureVerifier.
func (v *GPGVerifier) Verify(data, signature []byte) (string, error) {
	if len(signature) == 0 {
		return "", fmt.Errorf("%w: empty signature", ErrSignatureInvalid)
	}

	// Verify signature (try armored first)
	signer, err := openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	if err != nil {
		// Try non-armored signature
		signer, err = openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	if signer == nil || signer.PrimaryKey == nil {
		return "", fmt.Errorf("%w: unknown signer", ErrSignatureInvalid)
	}

	return signer.PrimaryKey.KeyIdString(), nil
}
