package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/underbudget/backend/internal/config"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltBytes = 32
	HashBytes = 32
)

// dummySalt feeds the decoy derivation run when a login names an unknown user.
var dummySalt = make([]byte, SaltBytes)

// PasswordHasher derives salted PBKDF2-HMAC-SHA256 hashes. Salts and hashes
// are hex encoded for storage.
type PasswordHasher struct {
	iterations int
}

func NewPasswordHasher(cfg config.AuthConfig) *PasswordHasher {
	return &PasswordHasher{iterations: cfg.PasswordIterations}
}

func (h *PasswordHasher) GenerateSalt() (string, error) {
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

func (h *PasswordHasher) Hash(password, salt string) (string, error) {
	raw, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("malformed salt: %w", err)
	}
	return hex.EncodeToString(h.derive(password, raw)), nil
}

// Verify reports whether password hashes to the stored value. The comparison
// runs in constant time.
func (h *PasswordHasher) Verify(password, salt, hash string) bool {
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(hash)
	if err != nil {
		return false
	}
	got := h.derive(password, rawSalt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Burn performs a full derivation and discards it, so a lookup miss costs the
// same as a password mismatch.
func (h *PasswordHasher) Burn(password string) {
	_ = h.derive(password, dummySalt)
}

func (h *PasswordHasher) derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, h.iterations, HashBytes, sha256.New)
}
