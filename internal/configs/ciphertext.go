package configs

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// EncryptedPrefix marks a stored string as ciphertext.
const EncryptedPrefix = "encrypted:"

// CiphertextVersion is the only envelope layout currently written.
const CiphertextVersion byte = 1

const (
	ephemeralKeySize = 32
	nonceSize        = 24
	boxOverhead      = 16
	envelopeHeader   = 1 + 16 + ephemeralKeySize + nonceSize
)

// Ciphertext is one sealed value. The envelope records which key pair it was
// sealed for, the sender's one-time public key and the nonce.
type Ciphertext struct {
	KeyID        uuid.UUID
	EphemeralKey [ephemeralKeySize]byte
	Nonce        [nonceSize]byte
	Sealed       []byte

	// raw is set when the stored string could not be decoded. Such a value
	// is kept byte-for-byte so rewriting the document does not alter it.
	raw string
}

// IsEncryptedString reports whether a stored string carries the encrypted prefix.
func IsEncryptedString(s string) bool {
	return strings.HasPrefix(s, EncryptedPrefix)
}

// DecodeCiphertext parses a stored `encrypted:` string. It never fails: a
// damaged envelope yields a Ciphertext for which Valid reports false.
func DecodeCiphertext(s string) *Ciphertext {
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, EncryptedPrefix))
	if err != nil || len(data) < envelopeHeader+boxOverhead || data[0] != CiphertextVersion {
		return &Ciphertext{raw: s}
	}

	c := &Ciphertext{}
	off := 1
	copy(c.KeyID[:], data[off:off+16])
	off += 16
	copy(c.EphemeralKey[:], data[off:off+ephemeralKeySize])
	off += ephemeralKeySize
	copy(c.Nonce[:], data[off:off+nonceSize])
	off += nonceSize
	c.Sealed = append([]byte(nil), data[off:]...)
	return c
}

// Valid reports whether the envelope decoded cleanly.
func (c *Ciphertext) Valid() bool {
	return c.raw == ""
}

// Encode returns the stored string form.
func (c *Ciphertext) Encode() string {
	if c.raw != "" {
		return c.raw
	}
	buf := make([]byte, 0, envelopeHeader+len(c.Sealed))
	buf = append(buf, CiphertextVersion)
	buf = append(buf, c.KeyID[:]...)
	buf = append(buf, c.EphemeralKey[:]...)
	buf = append(buf, c.Nonce[:]...)
	buf = append(buf, c.Sealed...)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(buf)
}

// String hides the envelope so ciphertext is never printed by accident.
func (c *Ciphertext) String() string {
	return "[encrypted]"
}
