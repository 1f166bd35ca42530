package secrets

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/PolarWolf314/stand/internal/configs"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

// VarRef names one stored variable. An empty Environment refers to the
// common section.
type VarRef struct {
	Environment string
	Name        string
}

// ParseVarRef parses "env:KEY", or "KEY" for a common variable.
func ParseVarRef(s string) (VarRef, error) {
	env, name, found := strings.Cut(s, ":")
	if !found {
		env, name = "", s
	}
	if found && env == "" {
		return VarRef{}, fmt.Errorf("%w: %q has an empty environment name", kerrors.ErrInvalidVariableName, s)
	}
	if !configs.IsValidVariableName(name) {
		return VarRef{}, fmt.Errorf("%w: %q", kerrors.ErrInvalidVariableName, name)
	}
	return VarRef{Environment: env, Name: name}, nil
}

func (r VarRef) String() string {
	if r.Environment == "" {
		return "common:" + r.Name
	}
	return r.Environment + ":" + r.Name
}

// variablesFor returns the mapping r points into.
func variablesFor(doc *configs.Document, r VarRef) (*configs.Variables, error) {
	if r.Environment == "" {
		if doc.Common == nil {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrVariableNotFound, r)
		}
		return doc.Common, nil
	}
	env, ok := doc.Environment(r.Environment)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", kerrors.ErrEnvironmentNotFound, r.Environment)
	}
	return env.Variables, nil
}

// EncryptedRefs lists every stored ciphertext, common first, then each
// environment in declaration order.
func EncryptedRefs(doc *configs.Document) []VarRef {
	var refs []VarRef
	collect := func(env string, vars *configs.Variables) {
		for _, name := range vars.Keys() {
			if v, _ := vars.Get(name); v.IsEncrypted() {
				refs = append(refs, VarRef{Environment: env, Name: name})
			}
		}
	}
	collect("", doc.Common)
	for _, env := range doc.OrderedEnvironments() {
		collect(env.Name, env.Variables)
	}
	return refs
}

// Vault encrypts values for a project and, given the private key, decrypts
// them. The private key is only loaded the first time it is needed.
type Vault struct {
	public  [keySize]byte
	keyID   uuid.UUID
	enabled bool
	source  KeySource

	mu   sync.Mutex
	pair *KeyPair
}

// NewVault prepares a vault for a document's encryption settings. settings
// may be nil, in which case every operation reports
// kerrors.ErrEncryptionNotEnabled.
func NewVault(settings *configs.EncryptionSettings, source KeySource) (*Vault, error) {
	v := &Vault{source: source}
	if settings == nil || settings.PublicKey == "" {
		return v, nil
	}

	pub, err := ParsePublicKey(settings.PublicKey)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(settings.KeyID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed key id", kerrors.ErrInvalidPublicKey)
	}
	v.public, v.keyID, v.enabled = pub, id, true
	return v, nil
}

// Enabled reports whether the vault has a public key.
func (v *Vault) Enabled() bool {
	return v.enabled
}

// EncryptValue seals plaintext with the project's public key. The private
// key is not needed.
func (v *Vault) EncryptValue(plaintext string) (*configs.Ciphertext, error) {
	if !v.enabled {
		return nil, kerrors.ErrEncryptionNotEnabled
	}
	return Seal([]byte(plaintext), &v.public, v.keyID)
}

// DecryptValue opens c, loading the private key on first use.
func (v *Vault) DecryptValue(c *configs.Ciphertext) (string, error) {
	k, err := v.keyPair()
	if err != nil {
		return "", err
	}
	plaintext, err := Open(c, k)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (v *Vault) keyPair() (*KeyPair, error) {
	if !v.enabled {
		return nil, kerrors.ErrEncryptionNotEnabled
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.pair != nil {
		return v.pair, nil
	}
	k, err := LoadPrivateKey(v.source)
	if err != nil {
		return nil, err
	}
	if k.ID != v.keyID || k.Public != v.public {
		k.Destroy()
		return nil, fmt.Errorf("%w: private key does not match the project's public key", kerrors.ErrDecryptionFailed)
	}
	v.pair = k
	return k, nil
}

// Disable decrypts every stored ciphertext in doc back to plain text and
// removes the encryption settings. Nothing in doc changes unless every value
// decrypts. Returns the number of values decrypted.
func (v *Vault) Disable(doc *configs.Document) (int, error) {
	if !doc.EncryptionEnabled() {
		return 0, kerrors.ErrEncryptionNotEnabled
	}

	refs := EncryptedRefs(doc)
	plain := make([]string, len(refs))
	for i, ref := range refs {
		vars, err := variablesFor(doc, ref)
		if err != nil {
			return 0, err
		}
		stored, _ := vars.Get(ref.Name)
		value, err := v.DecryptValue(stored.Ciphertext())
		if err != nil {
			return 0, fmt.Errorf("%s: %w", ref, err)
		}
		plain[i] = value
	}

	for i, ref := range refs {
		vars, _ := variablesFor(doc, ref)
		vars.Set(ref.Name, configs.PlainValue(plain[i]))
	}
	doc.Encryption = nil
	return len(refs), nil
}

// Destroy discards the loaded private key, if any.
func (v *Vault) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pair.Destroy()
	v.pair = nil
}

// Enable generates a key pair for doc, encrypts the listed plain values and
// records the public key in doc. Values that are already encrypted are left
// alone. On error doc is unchanged. The caller persists the returned key
// with SavePrivateKey.
func Enable(doc *configs.Document, targets []VarRef) (*KeyPair, error) {
	if doc.EncryptionEnabled() {
		return nil, kerrors.ErrEncryptionAlreadyEnabled
	}

	var pending []VarRef
	for _, ref := range targets {
		vars, err := variablesFor(doc, ref)
		if err != nil {
			return nil, err
		}
		stored, ok := vars.Get(ref.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrVariableNotFound, ref)
		}
		if !stored.IsEncrypted() {
			pending = append(pending, ref)
		}
	}

	k, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	sealed := make([]*configs.Ciphertext, len(pending))
	for i, ref := range pending {
		vars, _ := variablesFor(doc, ref)
		stored, _ := vars.Get(ref.Name)
		c, err := Seal([]byte(stored.Plain()), &k.Public, k.ID)
		if err != nil {
			k.Destroy()
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		sealed[i] = c
	}

	for i, ref := range pending {
		vars, _ := variablesFor(doc, ref)
		vars.Set(ref.Name, configs.EncryptedValue(sealed[i]))
	}
	doc.Encryption = &configs.EncryptionSettings{
		PublicKey: k.PublicKeyString(),
		KeyID:     k.ID.String(),
	}
	return k, nil
}
