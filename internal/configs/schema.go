package configs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed document.schema.json
var documentSchemaJSON string

var documentSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchemaJSON))
})

// checkSchema verifies the shape and value types of a decoded primary
// document before it is turned into a Document. Every mismatch is reported
// in one ParseError.
func checkSchema(path string, raw map[string]any) error {
	schema, err := documentSchema()
	if err != nil {
		return fmt.Errorf("loading document schema: %w", err)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return &kerrors.ParseError{Path: path, Message: fmt.Sprintf("unsupported value: %v", err)}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &kerrors.ParseError{Path: path, Message: fmt.Sprintf("schema validation error: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			problems = append(problems, desc.Description())
			continue
		}
		problems = append(problems, field+": "+desc.Description())
	}
	sort.Strings(problems)
	return &kerrors.ParseError{Path: path, Message: strings.Join(problems, "; ")}
}
