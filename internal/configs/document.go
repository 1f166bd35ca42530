package configs

import (
	"sort"

	"dario.cat/mergo"
)

// File names used inside a project root.
const (
	PrimaryFileName = ".stand.toml"
	LegacyDirName   = ".stand"
	LegacyFileName  = "config.yaml"
	KeyFileName     = ".stand.keys"
	LockFileName    = ".stand.lock"

	// CurrentVersion is written by init and migrate.
	CurrentVersion = "2.0"
)

// Nested shell behaviours accepted in settings.
const (
	NestedShellPrevent = "prevent"
	NestedShellAllow   = "allow"
	NestedShellWarn    = "warn"
)

// Format identifies which on-disk layout a document was read from.
type Format int

const (
	FormatPrimary Format = iota
	FormatLegacy
)

func (f Format) String() string {
	if f == FormatLegacy {
		return "legacy"
	}
	return "primary"
}

// Document is the parsed configuration for one project.
type Document struct {
	Version      string
	Common       *Variables
	Environments map[string]*Environment
	// Order is the declaration order of environments, for display.
	Order      []string
	Settings   Settings
	Encryption *EncryptionSettings

	Format Format
	Path   string
}

// Environment is a named set of variables with an optional parent.
type Environment struct {
	Name        string
	Description string
	// Extends names the parent environment, empty for none.
	Extends   string
	Variables *Variables

	// Nil means the field was not set on this environment.
	Color                *string
	RequiresConfirmation *bool
}

// Settings holds project-wide options.
type Settings struct {
	DefaultEnvironment  string `yaml:"default_environment"`
	NestedShellBehavior string `yaml:"nested_shell_behavior"`
	ShowEnvInPrompt     *bool  `yaml:"show_env_in_prompt"`
	AutoExitOnDirChange *bool  `yaml:"auto_exit_on_dir_change"`
}

// EncryptionSettings is present when encryption is enabled.
type EncryptionSettings struct {
	PublicKey string
	KeyID     string
}

// NewDocument returns an empty primary-format document.
func NewDocument() *Document {
	return &Document{
		Version:      CurrentVersion,
		Environments: make(map[string]*Environment),
	}
}

// Environment returns the environment called name.
func (d *Document) Environment(name string) (*Environment, bool) {
	env, ok := d.Environments[name]
	return env, ok
}

// AddEnvironment registers env, replacing any environment with the same name.
func (d *Document) AddEnvironment(env *Environment) {
	if d.Environments == nil {
		d.Environments = make(map[string]*Environment)
	}
	if env.Variables == nil {
		env.Variables = NewVariables()
	}
	if _, exists := d.Environments[env.Name]; !exists {
		d.Order = append(d.Order, env.Name)
	}
	d.Environments[env.Name] = env
}

// EnvironmentNames returns all environment names sorted alphabetically.
func (d *Document) EnvironmentNames() []string {
	names := make([]string, 0, len(d.Environments))
	for name := range d.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OrderedEnvironments returns environments in declaration order. Names missing
// from Order are appended alphabetically.
func (d *Document) OrderedEnvironments() []*Environment {
	seen := make(map[string]bool, len(d.Environments))
	out := make([]*Environment, 0, len(d.Environments))
	for _, name := range d.Order {
		if env, ok := d.Environments[name]; ok && !seen[name] {
			seen[name] = true
			out = append(out, env)
		}
	}
	for _, name := range d.EnvironmentNames() {
		if !seen[name] {
			out = append(out, d.Environments[name])
		}
	}
	return out
}

// EncryptionEnabled reports whether the document carries a public key.
func (d *Document) EncryptionEnabled() bool {
	return d.Encryption != nil && d.Encryption.PublicKey != ""
}

// Clone returns a deep copy, so callers can mutate it and discard on failure.
func (d *Document) Clone() *Document {
	out := &Document{
		Version:      d.Version,
		Environments: make(map[string]*Environment, len(d.Environments)),
		Order:        append([]string(nil), d.Order...),
		Settings:     d.Settings,
		Format:       d.Format,
		Path:         d.Path,
	}
	if d.Common != nil {
		out.Common = d.Common.Clone()
	}
	if d.Encryption != nil {
		enc := *d.Encryption
		out.Encryption = &enc
	}
	for name, env := range d.Environments {
		cp := *env
		cp.Variables = env.Variables.Clone()
		out.Environments[name] = &cp
	}
	return out
}

func defaultSettings() Settings {
	show := true
	autoExit := false
	return Settings{
		NestedShellBehavior: NestedShellWarn,
		ShowEnvInPrompt:     &show,
		AutoExitOnDirChange: &autoExit,
	}
}

// EffectiveSettings returns the settings with defaults filled in for every
// field the document leaves unset. The document itself is not modified.
func (d *Document) EffectiveSettings() Settings {
	out := d.Settings
	// Merging two values of the same struct type cannot fail.
	_ = mergo.Merge(&out, defaultSettings())
	return out
}
