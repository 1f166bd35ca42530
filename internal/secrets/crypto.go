package secrets

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
	"golang.org/x/crypto/nacl/box"

	"github.com/PolarWolf314/stand/internal/configs"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

// Seal encrypts plaintext for the holder of recipient's private key. Every
// call uses a fresh ephemeral sender key and a fresh random nonce, so equal
// plaintexts never produce equal ciphertexts.
func Seal(plaintext []byte, recipient *[keySize]byte, keyID uuid.UUID) (*configs.Ciphertext, error) {
	ephemeralPub, ephemeralPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptionFailed, err)
	}
	defer memguard.WipeBytes(ephemeralPriv[:])

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptionFailed, err)
	}

	return &configs.Ciphertext{
		KeyID:        keyID,
		EphemeralKey: *ephemeralPub,
		Nonce:        nonce,
		Sealed:       box.Seal(nil, plaintext, &nonce, recipient, ephemeralPriv),
	}, nil
}

// Open decrypts c with k. A damaged envelope, a ciphertext sealed for another
// key and a failed authentication all return kerrors.ErrDecryptionFailed
// with no plaintext.
func Open(c *configs.Ciphertext, k *KeyPair) ([]byte, error) {
	if c == nil || !c.Valid() {
		return nil, fmt.Errorf("%w: malformed ciphertext", kerrors.ErrDecryptionFailed)
	}
	if c.KeyID != k.ID {
		return nil, fmt.Errorf("%w: value was encrypted with a different key", kerrors.ErrDecryptionFailed)
	}

	locked, err := k.private.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecryptionFailed, err)
	}
	defer locked.Destroy()

	var priv [keySize]byte
	copy(priv[:], locked.Bytes())
	defer memguard.WipeBytes(priv[:])

	plaintext, ok := box.Open(nil, c.Sealed, &c.Nonce, &c.EphemeralKey, &priv)
	if !ok {
		return nil, kerrors.ErrDecryptionFailed
	}
	return plaintext, nil
}
