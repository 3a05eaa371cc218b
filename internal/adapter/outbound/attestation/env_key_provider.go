// Package attestation provides an environment-injected Ed25519 key
// provider for the domain attestation package's KeyProvider port.
package attestation

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
)

// EnvSeedVar is the environment variable holding the base64-encoded
// 32-byte Ed25519 seed used to derive the signing key pair.
const EnvSeedVar = "ATTESTATION_SIGNING_SEED"

// EnvKeyProvider derives its Ed25519 key pair once at construction time
// from a seed read out of the environment, so the signing key survives
// process restarts without being persisted to disk in plaintext.
type EnvKeyProvider struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// NewEnvKeyProvider reads EnvSeedVar, decodes it as standard base64, and
// derives an Ed25519 key pair from the resulting 32-byte seed.
func NewEnvKeyProvider() (*EnvKeyProvider, error) {
	raw := os.Getenv(EnvSeedVar)
	if raw == "" {
		return nil, fmt.Errorf("attestation: %s is not set", EnvSeedVar)
	}
	return newEnvKeyProviderFromBase64(raw)
}

func newEnvKeyProviderFromBase64(raw string) (*EnvKeyProvider, error) {
	seed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("attestation: decode %s: %w", EnvSeedVar, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("attestation: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &EnvKeyProvider{private: priv, public: pub}, nil
}

// SigningKeyPair implements attestation.KeyProvider.
func (p *EnvKeyProvider) SigningKeyPair(_ context.Context) ([]byte, []byte, error) {
	return []byte(p.private), []byte(p.public), nil
}

// PublicKey implements attestation.KeyProvider.
func (p *EnvKeyProvider) PublicKey(_ context.Context) ([]byte, error) {
	return []byte(p.public), nil
}

// PublicKeyID implements attestation.KeyProvider.
func (p *EnvKeyProvider) PublicKeyID(_ context.Context) (string, error) {
	sum := sha256.Sum256(p.public)
	return hex.EncodeToString(sum[:])[:16], nil
}
