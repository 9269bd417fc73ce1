package testutil

import (
	"bytes"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// Signer is a throwaway OpenPGP key for signing test fixtures.
type Signer struct {
	t      *testing.T
	entity *openpgp.Entity
}

// NewSigner generates a fresh ed25519 signing key.
func NewSigner(t *testing.T) *Signer {
	t.Helper()

	cfg := &packet.Config{Algorithm: packet.PubKeyAlgoEdDSA}
	entity, err := openpgp.NewEntity("hcdl test", "", "test@example.com", cfg)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	return &Signer{t: t, entity: entity}
}

// KeyID returns the primary key ID as uppercase hex.
func (s *Signer) KeyID() string {
	return s.entity.PrimaryKey.KeyIdString()
}

// Entity returns the key pair.
func (s *Signer) Entity() *openpgp.Entity {
	return s.entity
}

// PublicKey returns the public key in binary form.
func (s *Signer) PublicKey() []byte {
	s.t.Helper()

	var buf bytes.Buffer
	if err := s.entity.Serialize(&buf); err != nil {
		s.t.Fatalf("failed to serialize public key: %v", err)
	}
	return buf.Bytes()
}

// ArmoredPublicKey returns the public key ASCII armored.
func (s *Signer) ArmoredPublicKey() []byte {
	s.t.Helper()

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		s.t.Fatalf("failed to create armor encoder: %v", err)
	}
	if err := s.entity.Serialize(w); err != nil {
		s.t.Fatalf("failed to serialize public key: %v", err)
	}
	if err := w.Close(); err != nil {
		s.t.Fatalf("failed to close armor encoder: %v", err)
	}
	return buf.Bytes()
}

// Sign returns a binary detached signature over data.
func (s *Signer) Sign(data []byte) []byte {
	s.t.Helper()

	var buf bytes.Buffer
	if err := openpgp.DetachSign(&buf, s.entity, bytes.NewReader(data), nil); err != nil {
		s.t.Fatalf("failed to sign: %v", err)
	}
	return buf.Bytes()
}

// SignArmored returns an armored detached signature over data.
func (s *Signer) SignArmored(data []byte) []byte {
	s.t.Helper()

	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), nil); err != nil {
		s.t.Fatalf("failed to sign: %v", err)
	}
	return buf.Bytes()
}
