package secrets

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

var errKeyDestroyed = errors.New("private key has been destroyed")

// secureKey keeps private key bytes encrypted in memory between uses. The
// plaintext only exists inside a locked buffer for the duration of Open.
type secureKey struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// newSecureKey moves data into an enclave. data is wiped.
func newSecureKey(data []byte) *secureKey {
	return &secureKey{enclave: memguard.NewEnclave(data)}
}

// Open returns the key in a locked buffer. The caller must Destroy it.
func (s *secureKey) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.enclave == nil {
		return nil, errKeyDestroyed
	}
	return s.enclave.Open()
}

// Destroy drops the enclave. Safe to call more than once.
func (s *secureKey) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}
