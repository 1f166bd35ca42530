package configs

import (
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

// Validate checks the structure of doc and returns every problem found. It
// never stops at the first one. An empty result means the document is valid.
//
// Checks run in a fixed order: required fields, at least one environment,
// default environment exists, parents exist, no inheritance cycles, common
// variables non-empty, variable names legal.
func Validate(doc *Document) []error {
	var problems []error
	add := func(field, format string, args ...any) {
		problems = append(problems, &kerrors.Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	names := doc.EnvironmentNames()

	if strings.TrimSpace(doc.Version) == "" {
		add("version", "required field is missing")
	}
	for _, name := range names {
		if name == "" {
			add("environments", "environment name must not be empty")
			continue
		}
		if strings.TrimSpace(doc.Environments[name].Description) == "" {
			add("environments."+name+".description", "environment '%s' must have a non-empty description", name)
		}
	}

	if len(names) == 0 {
		add("environments", "at least one environment must be defined")
	}

	if def := doc.Settings.DefaultEnvironment; def != "" {
		if _, ok := doc.Environments[def]; !ok {
			add("settings.default_environment", "default environment '%s' does not exist", def)
		}
	}

	for _, name := range names {
		parent := doc.Environments[name].Extends
		if parent == "" {
			continue
		}
		if _, ok := doc.Environments[parent]; !ok {
			add("environments."+name+".extends", "environment '%s' extends unknown environment '%s'", name, parent)
		}
	}

	for _, cycle := range findCycles(doc, names) {
		problems = append(problems, cycle)
	}

	if doc.Common != nil {
		for _, key := range doc.Common.Keys() {
			if key == "" {
				add("common", "variable name must not be empty")
				continue
			}
			v, _ := doc.Common.Get(key)
			if !v.IsEncrypted() && v.Plain() == "" {
				add("common."+key, "common variable '%s' cannot have an empty value", key)
			}
		}
	}

	for _, key := range doc.Common.Keys() {
		if key != "" && !IsValidVariableName(key) {
			add("common."+key, "'%s' is not a valid variable name", key)
		}
	}
	for _, name := range names {
		for _, key := range doc.Environments[name].Variables.Keys() {
			if !IsValidVariableName(key) {
				add("environments."+name+"."+key, "'%s' is not a valid variable name", key)
			}
		}
	}

	return problems
}

// CheckDocument runs Validate and folds any problems into a single
// *kerrors.ValidationError.
func CheckDocument(doc *Document) error {
	problems := Validate(doc)
	if len(problems) == 0 {
		return nil
	}
	return &kerrors.ValidationError{Problems: problems}
}

const (
	white = iota
	grey
	black
)

// findCycles walks the extends graph depth first. Environments are visited
// in sorted order so results are deterministic; each cycle is reported once,
// starting from the first environment on it that the walk reaches.
func findCycles(doc *Document, names []string) []*kerrors.CycleError {
	colour := make(map[string]int, len(names))
	var cycles []*kerrors.CycleError

	for _, start := range names {
		if colour[start] != white {
			continue
		}

		var stack []string
		current := start
		for {
			colour[current] = grey
			stack = append(stack, current)

			parent := doc.Environments[current].Extends
			if _, ok := doc.Environments[parent]; parent == "" || !ok {
				break
			}
			if colour[parent] == black {
				break
			}
			if colour[parent] == grey {
				idx := indexOf(stack, parent)
				chain := append(append([]string(nil), stack[idx:]...), parent)
				cycles = append(cycles, &kerrors.CycleError{Chain: chain})
				break
			}
			current = parent
		}

		for _, n := range stack {
			colour[n] = black
		}
	}

	return cycles
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
