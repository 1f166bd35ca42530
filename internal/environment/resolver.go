package environment

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/stand/internal/configs"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

// Source records where a resolved variable's value came from.
type Source string

const (
	SourceCommon Source = "common"
	SourceLocal  Source = "local"
)

// InheritedFrom is the source for a value set by ancestor env.
func InheritedFrom(env string) Source {
	return Source("inherited-from-" + env)
}

// Entry is one resolved variable.
type Entry struct {
	Name string
	// Raw is the value as stored, possibly ciphertext.
	Raw configs.Value
	// Value is the usable plain text. For encrypted entries it is empty
	// until Decrypt has run.
	Value     string
	Source    Source
	Decrypted bool
}

// Resolved is the merged variable set for one environment.
type Resolved struct {
	Environment string
	// Chain lists the environments applied, root first, target last.
	Chain                []string
	Color                string
	RequiresConfirmation bool

	entries []*Entry
	index   map[string]int
}

// Resolve merges common variables and every ancestor of target into one
// ordered mapping. Precedence rises from common through the root ancestor
// to target itself. Color and confirmation are inherited from the nearest
// environment that sets them explicitly.
//
// Values are returned as stored; nothing is decrypted or expanded. Entries
// are ordered by first introduction: common keys, then new keys from each
// environment in chain order. Environment declaration order in the document
// does not matter.
func Resolve(doc *configs.Document, target string) (*Resolved, error) {
	if _, ok := doc.Environments[target]; !ok {
		return nil, fmt.Errorf("%w: '%s' (available: %s)", kerrors.ErrEnvironmentNotFound, target, strings.Join(doc.EnvironmentNames(), ", "))
	}

	chain, err := ancestry(doc, target)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Environment: target,
		Chain:       chain,
		index:       make(map[string]int),
	}

	if doc.Common != nil {
		for _, name := range doc.Common.Keys() {
			v, _ := doc.Common.Get(name)
			r.set(name, v, SourceCommon)
		}
	}

	for _, name := range chain {
		env := doc.Environments[name]
		source := InheritedFrom(name)
		if name == target {
			source = SourceLocal
		}
		for _, key := range env.Variables.Keys() {
			v, _ := env.Variables.Get(key)
			r.set(key, v, source)
		}
		if env.Color != nil {
			r.Color = *env.Color
		}
		if env.RequiresConfirmation != nil {
			r.RequiresConfirmation = *env.RequiresConfirmation
		}
	}

	return r, nil
}

// ancestry returns target and its parents, root first. It refuses cycles and
// dangling parents itself so an unvalidated document cannot loop forever.
func ancestry(doc *configs.Document, target string) ([]string, error) {
	var chain []string
	seen := make(map[string]bool)
	for name := target; name != ""; {
		if seen[name] {
			cycle := append([]string(nil), chain[indexOf(chain, name):]...)
			return nil, &kerrors.CycleError{Chain: append(cycle, name)}
		}
		env, ok := doc.Environments[name]
		if !ok {
			return nil, fmt.Errorf("%w: '%s' extends unknown environment '%s'", kerrors.ErrEnvironmentNotFound, chain[len(chain)-1], name)
		}
		seen[name] = true
		chain = append(chain, name)
		name = env.Extends
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

func (r *Resolved) set(name string, v configs.Value, source Source) {
	entry := &Entry{Name: name, Raw: v, Source: source}
	if !v.IsEncrypted() {
		entry.Value = v.Plain()
	}
	if i, ok := r.index[name]; ok {
		r.entries[i] = entry
		return
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry)
}

// Decrypter opens ciphertext.
type Decrypter interface {
	DecryptValue(c *configs.Ciphertext) (string, error)
}

// HasEncrypted reports whether any entry still holds ciphertext.
func (r *Resolved) HasEncrypted() bool {
	for _, e := range r.entries {
		if e.Raw.IsEncrypted() && !e.Decrypted {
			return true
		}
	}
	return false
}

// Decrypt opens every encrypted entry with d. On error no entry is changed.
func (r *Resolved) Decrypt(d Decrypter) error {
	plain := make(map[int]string)
	for i, e := range r.entries {
		if !e.Raw.IsEncrypted() || e.Decrypted {
			continue
		}
		value, err := d.DecryptValue(e.Raw.Ciphertext())
		if err != nil {
			return fmt.Errorf("variable %s: %w", e.Name, err)
		}
		plain[i] = value
	}
	for i, value := range plain {
		r.entries[i].Value = value
		r.entries[i].Decrypted = true
	}
	return nil
}

// Interpolate expands ${NAME} placeholders in every entry using lookup.
// Entries still holding ciphertext are an error: ciphertext is never
// scanned for placeholders. On error no entry is changed.
func (r *Resolved) Interpolate(lookup Lookup) error {
	expanded := make([]string, len(r.entries))
	for i, e := range r.entries {
		if e.Raw.IsEncrypted() && !e.Decrypted {
			return fmt.Errorf("variable %s: %w: value has not been decrypted", e.Name, kerrors.ErrDecryptionFailed)
		}
		value, err := Expand(e.Value, lookup)
		if err != nil {
			return fmt.Errorf("variable %s: %w", e.Name, err)
		}
		expanded[i] = value
	}
	for i, value := range expanded {
		r.entries[i].Value = value
	}
	return nil
}

// Entries returns copies of the entries in resolution order.
func (r *Resolved) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = *e
	}
	return out
}

// Get returns the entry for name.
func (r *Resolved) Get(name string) (Entry, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return *r.entries[i], true
}

// Names returns variable names in resolution order.
func (r *Resolved) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Name
	}
	return out
}

// Len returns the number of variables.
func (r *Resolved) Len() int {
	return len(r.entries)
}

// Map returns name to value, for handing to a child process.
func (r *Resolved) Map() map[string]string {
	out := make(map[string]string, len(r.entries))
	for _, e := range r.entries {
		out[e.Name] = e.Value
	}
	return out
}
