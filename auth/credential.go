package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Scheme identifies the digest algorithm behind a credential record.
type Scheme int

const (
	// SchemeLegacySHA256 is a single unsalted SHA-256 digest. Accounts
	// created before salted hashing keep authenticating in this scheme.
	SchemeLegacySHA256 Scheme = iota
	// SchemePBKDF2SHA256 is PBKDF2-HMAC-SHA256 with a per-user salt.
	SchemePBKDF2SHA256
)

const (
	// PBKDF2Iterations is a fixed constant of the scheme and is never
	// stored or negotiated per record.
	PBKDF2Iterations = 100_000

	// saltEntropyBytes is the raw entropy behind each salt. The salt
	// string itself is the hex encoding of these bytes, and its ASCII
	// bytes feed the KDF.
	saltEntropyBytes = 16

	digestLen = sha256.Size
)

// ErrMalformedCredential indicates a stored credential string that cannot
// be parsed under either scheme.
var ErrMalformedCredential = errors.New("malformed credential record")

// CredentialRecord holds one user's password digest plus role flag.
// Salt is empty exactly when Scheme is SchemeLegacySHA256.
type CredentialRecord struct {
	Scheme  Scheme
	Salt    string
	Digest  []byte
	IsAdmin bool
}

// HashPassword derives a fresh salted credential for a new account or a
// password change. The returned record always uses SchemePBKDF2SHA256.
func HashPassword(password string) (CredentialRecord, error) {
	raw := make([]byte, saltEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return CredentialRecord{}, fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	return CredentialRecord{
		Scheme: SchemePBKDF2SHA256,
		Salt:   salt,
		Digest: deriveDigest(password, salt),
	}, nil
}

// Verify reports whether password matches the record's stored digest.
// Comparison is constant-time under both schemes.
func Verify(password string, rec CredentialRecord) bool {
	var candidate []byte
	switch rec.Scheme {
	case SchemePBKDF2SHA256:
		candidate = deriveDigest(password, rec.Salt)
	case SchemeLegacySHA256:
		sum := sha256.Sum256([]byte(password))
		candidate = sum[:]
	default:
		return false
	}
	return subtle.ConstantTimeCompare(candidate, rec.Digest) == 1
}

func deriveDigest(password, salt string) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), PBKDF2Iterations, digestLen, sha256.New)
}

// EncodeCredential renders the scheme-bearing part of a record as the
// stored string form: "saltHex:digestHex" for the salted scheme, a bare
// hex digest for the legacy one.
func EncodeCredential(rec CredentialRecord) string {
	if rec.Scheme == SchemePBKDF2SHA256 {
		return rec.Salt + ":" + hex.EncodeToString(rec.Digest)
	}
	return hex.EncodeToString(rec.Digest)
}

// ParseCredential reads a stored credential string back into a tagged
// record. Strings without a colon are legacy unsalted digests.
func ParseCredential(s string) (CredentialRecord, error) {
	salt, digestHex, salted := strings.Cut(s, ":")
	if !salted {
		digest, err := hex.DecodeString(s)
		if err != nil || len(digest) != digestLen {
			return CredentialRecord{}, fmt.Errorf("%w: bad legacy digest", ErrMalformedCredential)
		}
		return CredentialRecord{Scheme: SchemeLegacySHA256, Digest: digest}, nil
	}

	if salt == "" {
		return CredentialRecord{}, fmt.Errorf("%w: empty salt", ErrMalformedCredential)
	}
	digest, err := hex.DecodeString(digestHex)
	if err != nil || len(digest) != digestLen {
		return CredentialRecord{}, fmt.Errorf("%w: bad digest", ErrMalformedCredential)
	}
	return CredentialRecord{Scheme: SchemePBKDF2SHA256, Salt: salt, Digest: digest}, nil
}
