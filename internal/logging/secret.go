package logger

// Secret is a string that never prints its contents.
type Secret string

func (s Secret) String() string {
	return "[REDACTED]"
}

func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Reveal returns the underlying value.
func (s Secret) Reveal() string {
	return string(s)
}
