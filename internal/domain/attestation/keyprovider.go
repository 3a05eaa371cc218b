package attestation

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// publicKeyID derives the first 16 hex characters of SHA-256 over pub.
func publicKeyID(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:])[:16]
}

// DeterministicTestProvider derives a fixed Ed25519 key pair from a
// seed, for reproducible tests and local development. It performs no
// I/O; the environment-injected provider lives in
// adapter/outbound/attestation.
type DeterministicTestProvider struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// NewDeterministicTestProvider derives a key pair from seed, which must
// be exactly ed25519.SeedSize bytes (32). Callers typically pad/hash a
// short test string to this length.
func NewDeterministicTestProvider(seed []byte) (*DeterministicTestProvider, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("attestation: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &DeterministicTestProvider{private: priv, public: pub}, nil
}

// SigningKeyPair implements KeyProvider.
func (p *DeterministicTestProvider) SigningKeyPair(_ context.Context) ([]byte, []byte, error) {
	return []byte(p.private), []byte(p.public), nil
}

// PublicKey implements KeyProvider.
func (p *DeterministicTestProvider) PublicKey(_ context.Context) ([]byte, error) {
	return []byte(p.public), nil
}

// PublicKeyID implements KeyProvider.
func (p *DeterministicTestProvider) PublicKeyID(_ context.Context) (string, error) {
	return publicKeyID(p.public), nil
}
