package guard

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
)

// passphraseParams mirrors the teacher's OWASP-minimum Argon2id tuning
// for the owner-override passphrase: 47 MiB, 1 iteration, 1 lane.
var passphraseParams = &argon2id.Params{
	Memory:      47 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// HashPassphrase returns an Argon2id PHC-format hash of raw, for
// seeding the owner-override passphrase at config/bootstrap time.
func HashPassphrase(raw string) (string, error) {
	return argon2id.CreateHash(raw, passphraseParams)
}

// VerifyPassphrase checks raw against storedHash, which may be an
// Argon2id PHC string or a bare/prefixed SHA-256 hex digest (for
// dev-mode bootstrap keys seeded directly in config). Never panics:
// a malformed Argon2id hash is reported as a mismatch, not a crash.
func VerifyPassphrase(raw, storedHash string) (bool, error) {
	if strings.HasPrefix(storedHash, "$argon2id$") {
		return safeArgon2idCompare(raw, storedHash)
	}
	expected := strings.TrimPrefix(storedHash, "sha256:")
	if len(expected) != 64 || !isHexString(expected) {
		return false, fmt.Errorf("guard: unrecognized passphrase hash format")
	}
	computed := hashSHA256Hex(raw)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expected)) == 1, nil
}

func safeArgon2idCompare(raw, storedHash string) (match bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			match = false
			err = fmt.Errorf("guard: invalid argon2id hash parameters: %v", r)
		}
	}()
	return argon2id.ComparePasswordAndHash(raw, storedHash)
}

func hashSHA256Hex(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func isHexString(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
