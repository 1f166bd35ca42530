package configs

// Value is a stored variable value: either plain text, which may contain
// `${NAME}` placeholders, or an opaque ciphertext.
type Value struct {
	plain  string
	secret *Ciphertext
}

// PlainValue returns a plain-text value.
func PlainValue(s string) Value {
	return Value{plain: s}
}

// EncryptedValue returns a value holding ciphertext.
func EncryptedValue(c *Ciphertext) Value {
	return Value{secret: c}
}

// ParseValue interprets a raw string read from a document. Anything carrying
// the encrypted prefix becomes an encrypted value, even when the envelope is
// damaged; such a value fails at decryption time rather than at load time.
func ParseValue(raw string) Value {
	if IsEncryptedString(raw) {
		return EncryptedValue(DecodeCiphertext(raw))
	}
	return PlainValue(raw)
}

// IsEncrypted reports whether the value holds ciphertext.
func (v Value) IsEncrypted() bool {
	return v.secret != nil
}

// Plain returns the plain text. It is empty for encrypted values.
func (v Value) Plain() string {
	return v.plain
}

// Ciphertext returns the ciphertext, or nil for plain values.
func (v Value) Ciphertext() *Ciphertext {
	return v.secret
}

// Stored returns the string form written to documents.
func (v Value) Stored() string {
	if v.secret != nil {
		return v.secret.Encode()
	}
	return v.plain
}

// Variables is a string-to-Value mapping that remembers insertion order.
// Order is kept for display only; it never affects resolution.
type Variables struct {
	keys   []string
	values map[string]Value
}

// NewVariables returns an empty mapping.
func NewVariables() *Variables {
	return &Variables{values: make(map[string]Value)}
}

// Set stores a value. Replacing an existing name keeps its position.
func (v *Variables) Set(name string, val Value) {
	if v.values == nil {
		v.values = make(map[string]Value)
	}
	if _, ok := v.values[name]; !ok {
		v.keys = append(v.keys, name)
	}
	v.values[name] = val
}

// Get returns the value stored under name.
func (v *Variables) Get(name string) (Value, bool) {
	if v == nil {
		return Value{}, false
	}
	val, ok := v.values[name]
	return val, ok
}

// Delete removes name and reports whether it was present.
func (v *Variables) Delete(name string) bool {
	if v == nil {
		return false
	}
	if _, ok := v.values[name]; !ok {
		return false
	}
	delete(v.values, name)
	for i, k := range v.keys {
		if k == name {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the names in insertion order.
func (v *Variables) Keys() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Len returns the number of variables.
func (v *Variables) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// Clone returns an independent copy.
func (v *Variables) Clone() *Variables {
	out := NewVariables()
	if v == nil {
		return out
	}
	for _, k := range v.keys {
		out.Set(k, v.values[k])
	}
	return out
}
