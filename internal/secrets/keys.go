package secrets

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
	logger "github.com/PolarWolf314/stand/internal/logging"
	"github.com/PolarWolf314/stand/internal/utils"
)

const (
	// PublicKeyPrefix tags the public key string stored in documents.
	PublicKeyPrefix = "stand1"

	privateKeyPEMType = "STAND X25519 PRIVATE KEY"
	keyIDHeader       = "Key-Id"
	keySize           = 32
)

// KeyPair is a project's X25519 key pair. The private half lives in a
// memguard enclave.
type KeyPair struct {
	ID     uuid.UUID
	Public [keySize]byte

	private *secureKey
}

// GenerateKeyPair creates a key pair with a fresh key id.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key id: %w", err)
	}
	return &KeyPair{ID: id, Public: *pub, private: newSecureKey(priv[:])}, nil
}

// PublicKeyString returns the public key in the form stored in documents.
func (k *KeyPair) PublicKeyString() string {
	return FormatPublicKey(k.Public)
}

// Destroy discards the private key.
func (k *KeyPair) Destroy() {
	if k != nil && k.private != nil {
		k.private.Destroy()
	}
}

// FormatPublicKey encodes a public key as "stand1" followed by base64.
func FormatPublicKey(pub [keySize]byte) string {
	return PublicKeyPrefix + base64.StdEncoding.EncodeToString(pub[:])
}

// ParsePublicKey decodes a key produced by FormatPublicKey.
func ParsePublicKey(s string) ([keySize]byte, error) {
	var pub [keySize]byte
	if !strings.HasPrefix(s, PublicKeyPrefix) {
		return pub, fmt.Errorf("%w: missing %q prefix", kerrors.ErrInvalidPublicKey, PublicKeyPrefix)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, PublicKeyPrefix))
	if err != nil || len(data) != keySize {
		return pub, fmt.Errorf("%w: expected %d bytes of base64", kerrors.ErrInvalidPublicKey, keySize)
	}
	copy(pub[:], data)
	return pub, nil
}

// MarshalPrivateKey returns the PEM form of the private key. The result
// holds key material; callers should wipe it with memguard.WipeBytes.
func (k *KeyPair) MarshalPrivateKey() ([]byte, error) {
	locked, err := k.private.Open()
	if err != nil {
		return nil, err
	}
	defer locked.Destroy()

	return pem.EncodeToMemory(&pem.Block{
		Type:    privateKeyPEMType,
		Headers: map[string]string{keyIDHeader: k.ID.String()},
		Bytes:   locked.Bytes(),
	}), nil
}

// SavePrivateKey writes the private key to path with 0600 permissions.
func SavePrivateKey(path string, k *KeyPair) error {
	data, err := k.MarshalPrivateKey()
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}
	defer memguard.WipeBytes(data)

	if err := utils.WriteFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("failed to save private key to %s: %w", path, err)
	}
	return nil
}

// ParsePrivateKey reads a key written by SavePrivateKey. The PEM text may
// itself be base64 encoded, which is easier to pass through CI variables.
// data is wiped.
func ParsePrivateKey(data []byte) (*KeyPair, error) {
	defer memguard.WipeBytes(data)

	block, _ := pem.Decode(data)
	if block == nil {
		decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
		if err == nil {
			block, _ = pem.Decode(decoded)
			memguard.WipeBytes(decoded)
		}
	}
	if block == nil || block.Type != privateKeyPEMType {
		return nil, fmt.Errorf("%w: expected a PEM block of type %q", kerrors.ErrInvalidPrivateKey, privateKeyPEMType)
	}
	defer memguard.WipeBytes(block.Bytes)

	if len(block.Bytes) != keySize {
		return nil, fmt.Errorf("%w: expected %d key bytes, got %d", kerrors.ErrInvalidPrivateKey, keySize, len(block.Bytes))
	}
	id, err := uuid.Parse(block.Headers[keyIDHeader])
	if err != nil {
		return nil, fmt.Errorf("%w: missing or malformed %s header", kerrors.ErrInvalidPrivateKey, keyIDHeader)
	}

	pub, err := curve25519.X25519(block.Bytes, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPrivateKey, err)
	}

	k := &KeyPair{ID: id}
	copy(k.Public[:], pub)
	k.private = newSecureKey(append([]byte(nil), block.Bytes...))
	return k, nil
}

// KeySource says where to find the private key. Inline key material, from
// STAND_PRIVATE_KEY, takes precedence over the key file.
type KeySource struct {
	Path   string
	Inline logger.Secret

	// Warn receives non-fatal problems such as a key file readable by others.
	Warn func(msg string, args ...any)
}

// LoadPrivateKey reads the key pair described by src. A missing key file is
// kerrors.ErrMissingKey.
func LoadPrivateKey(src KeySource) (*KeyPair, error) {
	if src.Inline != "" {
		k, err := ParsePrivateKey([]byte(src.Inline.Reveal()))
		if err != nil {
			return nil, fmt.Errorf("STAND_PRIVATE_KEY: %w", err)
		}
		return k, nil
	}

	if src.Path == "" {
		return nil, kerrors.ErrMissingKey
	}
	info, err := os.Stat(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrMissingKey, src.Path)
		}
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrMissingKey, src.Path, err)
	}
	if !utils.HasOwnerOnlyPermissions(info) && src.Warn != nil {
		src.Warn("private key file %s has permissions %04o; it should be 0600", src.Path, info.Mode().Perm())
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrPermissionDenied, src.Path)
		}
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrMissingKey, src.Path, err)
	}
	k, err := ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	return k, nil
}
