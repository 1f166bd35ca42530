package configs

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

// Fields of an environment table that are not variables.
const (
	fieldDescription          = "description"
	fieldExtends              = "extends"
	fieldColor                = "color"
	fieldRequiresConfirmation = "requires_confirmation"
)

// IsReservedKey reports whether name is an environment field rather than a variable.
func IsReservedKey(name string) bool {
	switch name {
	case fieldDescription, fieldExtends, fieldColor, fieldRequiresConfirmation:
		return true
	}
	return false
}

// DecodeTOML parses a primary-format document. path is used for error
// messages only.
func DecodeTOML(path string, data []byte) (*Document, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, tomlParseError(path, data, err)
	}
	if err := checkSchema(path, raw); err != nil {
		return nil, err
	}

	doc := &Document{
		Environments: make(map[string]*Environment),
		Format:       FormatPrimary,
		Path:         path,
	}
	doc.Version, _ = raw["version"].(string)

	if s, ok := raw["settings"].(map[string]any); ok {
		doc.Settings.DefaultEnvironment, _ = s["default_environment"].(string)
		doc.Settings.NestedShellBehavior, _ = s["nested_shell_behavior"].(string)
		doc.Settings.ShowEnvInPrompt = boolPtr(s["show_env_in_prompt"])
		doc.Settings.AutoExitOnDirChange = boolPtr(s["auto_exit_on_dir_change"])
	}

	if e, ok := raw["encryption"].(map[string]any); ok {
		doc.Encryption = &EncryptionSettings{}
		doc.Encryption.PublicKey, _ = e["public_key"].(string)
		doc.Encryption.KeyID, _ = e["key_id"].(string)
	}

	common, _ := raw["common"].(map[string]any)
	envs, _ := raw["environments"].(map[string]any)
	if common != nil {
		doc.Common = NewVariables()
	}

	// MetaData.Keys preserves declaration order, which the plain map loses.
	for _, key := range md.Keys() {
		switch {
		case len(key) == 2 && key[0] == "common":
			if s, ok := common[key[1]].(string); ok {
				doc.Common.Set(key[1], ParseValue(s))
			}
		case len(key) >= 2 && key[0] == "environments":
			table, ok := envs[key[1]].(map[string]any)
			if !ok {
				continue
			}
			env := ensureEnvironment(doc, key[1])
			if len(key) == 3 {
				applyEnvironmentKey(env, key[2], table[key[2]])
			}
		}
	}

	// Inline tables may not be listed key by key; pick up anything missed.
	for _, name := range sortedKeys(envs) {
		table, ok := envs[name].(map[string]any)
		if !ok {
			continue
		}
		env := ensureEnvironment(doc, name)
		for _, k := range sortedKeys(table) {
			if _, seen := env.Variables.Get(k); !seen {
				applyEnvironmentKey(env, k, table[k])
			}
		}
	}
	for _, k := range sortedKeys(common) {
		if _, seen := doc.Common.Get(k); !seen {
			if s, ok := common[k].(string); ok {
				doc.Common.Set(k, ParseValue(s))
			}
		}
	}

	return doc, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ensureEnvironment(doc *Document, name string) *Environment {
	if env, ok := doc.Environments[name]; ok {
		return env
	}
	env := &Environment{Name: name, Variables: NewVariables()}
	doc.AddEnvironment(env)
	return env
}

func applyEnvironmentKey(env *Environment, key string, value any) {
	switch key {
	case fieldDescription:
		env.Description, _ = value.(string)
	case fieldExtends:
		env.Extends, _ = value.(string)
	case fieldColor:
		if s, ok := value.(string); ok {
			env.Color = &s
		}
	case fieldRequiresConfirmation:
		env.RequiresConfirmation = boolPtr(value)
	default:
		if s, ok := value.(string); ok {
			env.Variables.Set(key, ParseValue(s))
		}
	}
}

func boolPtr(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

func tomlParseError(path string, data []byte, err error) error {
	var perr toml.ParseError
	if !errors.As(err, &perr) {
		return &kerrors.ParseError{Path: path, Message: err.Error()}
	}
	out := &kerrors.ParseError{
		Path:    path,
		Line:    perr.Position.Line,
		Message: perr.Message,
	}
	if start := perr.Position.Start; start >= 0 && start <= len(data) {
		out.Column = start - bytes.LastIndexByte(data[:start], '\n')
	}
	return out
}

// EncodeTOML renders doc in the primary format. Environments and variables
// are written in their declaration order.
func EncodeTOML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := &tomlWriter{buf: &buf}

	w.pair("version", doc.Version)

	s := doc.Settings
	if s.DefaultEnvironment != "" || s.NestedShellBehavior != "" || s.ShowEnvInPrompt != nil || s.AutoExitOnDirChange != nil {
		w.table("settings")
		if s.DefaultEnvironment != "" {
			w.pair("default_environment", s.DefaultEnvironment)
		}
		if s.NestedShellBehavior != "" {
			w.pair("nested_shell_behavior", s.NestedShellBehavior)
		}
		if s.ShowEnvInPrompt != nil {
			w.pair("show_env_in_prompt", *s.ShowEnvInPrompt)
		}
		if s.AutoExitOnDirChange != nil {
			w.pair("auto_exit_on_dir_change", *s.AutoExitOnDirChange)
		}
	}

	if doc.Encryption != nil {
		w.table("encryption")
		w.pair("public_key", doc.Encryption.PublicKey)
		if doc.Encryption.KeyID != "" {
			w.pair("key_id", doc.Encryption.KeyID)
		}
	}

	if doc.Common != nil {
		w.table("common")
		w.variables(doc.Common)
	}

	for _, env := range doc.OrderedEnvironments() {
		w.table("environments", env.Name)
		w.pair(fieldDescription, env.Description)
		if env.Extends != "" {
			w.pair(fieldExtends, env.Extends)
		}
		if env.Color != nil {
			w.pair(fieldColor, *env.Color)
		}
		if env.RequiresConfirmation != nil {
			w.pair(fieldRequiresConfirmation, *env.RequiresConfirmation)
		}
		w.variables(env.Variables)
	}

	if w.err != nil {
		return nil, w.err
	}
	return buf.Bytes(), nil
}

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// tomlWriter emits a document line by line so key order is kept. Quoting of
// keys and values is delegated to the toml encoder.
type tomlWriter struct {
	buf *bytes.Buffer
	err error
}

func (w *tomlWriter) table(path ...string) {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = w.key(p)
	}
	if w.buf.Len() > 0 {
		w.buf.WriteByte('\n')
	}
	fmt.Fprintf(w.buf, "[%s]\n", strings.Join(parts, "."))
}

func (w *tomlWriter) variables(vars *Variables) {
	for _, name := range vars.Keys() {
		v, _ := vars.Get(name)
		w.pair(name, v.Stored())
	}
}

func (w *tomlWriter) pair(key string, value any) {
	line, err := encodeLine(key, value)
	if err != nil {
		if w.err == nil {
			w.err = fmt.Errorf("encoding %q: %w", key, err)
		}
		return
	}
	w.buf.WriteString(line)
}

func (w *tomlWriter) key(k string) string {
	if bareKey.MatchString(k) {
		return k
	}
	line, err := encodeLine(k, "")
	if err != nil {
		if w.err == nil {
			w.err = fmt.Errorf("encoding key %q: %w", k, err)
		}
		return k
	}
	return strings.TrimSuffix(line, " = \"\"\n")
}

func encodeLine(key string, value any) (string, error) {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(map[string]any{key: value}); err != nil {
		return "", err
	}
	return b.String(), nil
}
