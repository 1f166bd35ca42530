package configs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"gopkg.in/yaml.v3"
)

// legacyDocument is the YAML layout used before the single-file format.
// Environments list dotenv files, relative to the project root, whose
// variables are merged in order. Scalar keys next to the known fields are
// treated as inline variables.
type legacyDocument struct {
	Version      string    `yaml:"version"`
	Environments yaml.Node `yaml:"environments"`
	Common       yaml.Node `yaml:"common"`
	Settings     Settings  `yaml:"settings"`
}

var (
	yamlLine   = regexp.MustCompile(`line (\d+)`)
	yamlQuoted = regexp.MustCompile("`[^`]*`")
)

// scrubYAML drops quoted input from yaml.v3 messages, which may be secret.
func scrubYAML(msg string) string {
	return yamlQuoted.ReplaceAllString(msg, "value")
}

// DecodeLegacy parses .stand/config.yaml and the dotenv files it references.
func DecodeLegacy(root, path string, data []byte) (*Document, error) {
	var raw legacyDocument
	if err := decodeYAML(data, &raw); err != nil {
		return nil, yamlParseError(path, err)
	}

	doc := &Document{
		Version:      raw.Version,
		Environments: make(map[string]*Environment),
		Settings:     raw.Settings,
		Format:       FormatLegacy,
		Path:         path,
	}

	if raw.Common.Kind != 0 {
		common, err := legacyVariables(path, &raw.Common)
		if err != nil {
			return nil, err
		}
		doc.Common = common
	}

	if raw.Environments.Kind != 0 {
		if raw.Environments.Kind != yaml.MappingNode {
			return nil, &kerrors.ParseError{Path: path, Line: raw.Environments.Line, Column: raw.Environments.Column, Message: "environments must be a mapping"}
		}
		nodes := raw.Environments.Content
		for i := 0; i+1 < len(nodes); i += 2 {
			env, err := legacyEnvironment(root, path, nodes[i].Value, nodes[i+1])
			if err != nil {
				return nil, err
			}
			doc.AddEnvironment(env)
		}
	}

	return doc, nil
}

func legacyEnvironment(root, path, name string, node *yaml.Node) (*Environment, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &kerrors.ParseError{Path: path, Line: node.Line, Column: node.Column, Message: fmt.Sprintf("environment %q must be a mapping", name)}
	}

	env := &Environment{Name: name, Variables: NewVariables()}
	var files []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var err error
		switch key.Value {
		case "files":
			err = value.Decode(&files)
		case "variables":
			var vars *Variables
			vars, err = legacyVariables(path, value)
			for _, k := range vars.Keys() {
				v, _ := vars.Get(k)
				env.Variables.Set(k, v)
			}
		case fieldRequiresConfirmation:
			var b bool
			err = value.Decode(&b)
			env.RequiresConfirmation = &b
		case fieldColor:
			var s string
			err = value.Decode(&s)
			env.Color = &s
		case fieldDescription:
			err = value.Decode(&env.Description)
		case fieldExtends:
			err = value.Decode(&env.Extends)
		default:
			if value.Kind != yaml.ScalarNode {
				err = errors.New("expected a string value")
				break
			}
			env.Variables.Set(key.Value, ParseValue(value.Value))
		}
		if err != nil {
			return nil, &kerrors.ParseError{Path: path, Line: key.Line, Column: key.Column, Message: fmt.Sprintf("environments.%s.%s: %s", name, key.Value, scrubYAML(err.Error()))}
		}
	}

	for _, f := range files {
		filePath := f
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(root, f)
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, readError(filePath, err)
		}
		vars, err := ParseDotenv(filePath, data)
		if err != nil {
			return nil, err
		}
		// Inline variables take precedence over file contents.
		for _, k := range vars.Keys() {
			if _, exists := env.Variables.Get(k); exists {
				continue
			}
			v, _ := vars.Get(k)
			env.Variables.Set(k, v)
		}
	}

	return env, nil
}

func legacyVariables(path string, node *yaml.Node) (*Variables, error) {
	vars := NewVariables()
	if node.Kind != yaml.MappingNode {
		return vars, &kerrors.ParseError{Path: path, Line: node.Line, Column: node.Column, Message: "expected a mapping of variables"}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return vars, &kerrors.ParseError{Path: path, Line: value.Line, Column: value.Column, Message: fmt.Sprintf("%s: expected a string value", key.Value)}
		}
		vars.Set(key.Value, ParseValue(value.Value))
	}
	return vars, nil
}

func decodeYAML(data []byte, out *legacyDocument) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(out)
	if errors.Is(err, io.EOF) {
		// An empty file decodes to an empty document.
		return nil
	}
	return err
}

func yamlParseError(path string, err error) error {
	out := &kerrors.ParseError{Path: path, Message: scrubYAML(err.Error())}
	var terr *yaml.TypeError
	if errors.As(err, &terr) && len(terr.Errors) > 0 {
		out.Message = scrubYAML(terr.Errors[0])
	}
	if m := yamlLine.FindStringSubmatch(out.Message); m != nil {
		out.Line, _ = strconv.Atoi(m[1])
	}
	return out
}
