// Package auth verifies the configured operator credential and manages
// the in-process session table.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidCredentials covers every login failure. Callers surface it
// as an undifferentiated access denial so responses never reveal which
// check failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidMasterSecret is returned when the session secret is empty.
var ErrInvalidMasterSecret = errors.New("master secret cannot be empty")

const (
	// derivedKeyLength is 32 bytes, matching HMAC-SHA256.
	derivedKeyLength = 32

	purposeOperatorSecret = "tidecal-operator-secret-v1"
)

// DeriveKey derives a purpose-bound key from the master secret using
// HKDF-SHA256 (RFC 5869). Keys derived with different purpose strings
// are cryptographically independent.
func DeriveKey(masterSecret []byte, purpose string) ([]byte, error) {
	if len(masterSecret) == 0 {
		return nil, ErrInvalidMasterSecret
	}
	reader := hkdf.New(sha256.New, masterSecret, nil, []byte(purpose))
	key := make([]byte, derivedKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Credentials holds the single configured operator identity. The
// secret is kept only as a keyed digest; the plaintext is discarded at
// construction.
type Credentials struct {
	username   string
	digest     []byte // HMAC-SHA256(derived key, secret)
	bcryptHash []byte // set instead of digest when configured pre-hashed
	key        []byte
}

// NewCredentials builds the operator credential from configuration.
// When secret already looks like a bcrypt hash it is used as-is, so
// deployments can avoid keeping the plaintext in the environment.
func NewCredentials(username, secret, masterSecret string) (*Credentials, error) {
	if username == "" || secret == "" {
		return nil, ErrInvalidCredentials
	}
	key, err := DeriveKey([]byte(masterSecret), purposeOperatorSecret)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{username: username, key: key}
	if isBcryptHash(secret) {
		creds.bcryptHash = []byte(secret)
		return creds, nil
	}
	creds.digest = keyedDigest(key, secret)
	return creds, nil
}

// Verify checks the supplied pair against the configured one in
// constant time. Username and secret comparisons are combined so a
// mismatched username costs the same as a mismatched secret.
func (c *Credentials) Verify(username, secret string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username))

	var secretOK int
	if c.bcryptHash != nil {
		if bcrypt.CompareHashAndPassword(c.bcryptHash, []byte(secret)) == nil {
			secretOK = 1
		}
	} else {
		secretOK = subtle.ConstantTimeCompare(keyedDigest(c.key, secret), c.digest)
	}

	if userOK&secretOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// Username returns the configured operator username.
func (c *Credentials) Username() string {
	return c.username
}

func keyedDigest(key []byte, secret string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(secret))
	return mac.Sum(nil)
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") ||
		strings.HasPrefix(value, "$2b$") ||
		strings.HasPrefix(value, "$2y$")
}
