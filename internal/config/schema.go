package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://gittydocs.dev/schema/config.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse config schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add config schema: %w", err)
	}
	sch, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	return sch, nil
})

// SchemaError reports a config document that does not match the schema.
type SchemaError struct {
	Source string
	Err    *jsonschema.ValidationError
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Source, strings.Join(e.Details(), "; "))
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Details flattens the validation tree into "path: message" lines, leaf
// causes only.
func (e *SchemaError) Details() []string {
	printer := message.NewPrinter(language.English)
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			path := "$"
			if len(v.InstanceLocation) > 0 {
				path = "$." + strings.Join(v.InstanceLocation, ".")
			}
			out = append(out, path+": "+v.ErrorKind.LocalizedString(printer))
			return
		}
		for _, cause := range v.Causes {
			walk(cause)
		}
	}
	walk(e.Err)
	return out
}

// validateDocument checks normalized JSON against the embedded schema.
func validateDocument(source string, normalized []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(normalized))
	if err != nil {
		return fmt.Errorf("parse config %s: %w", source, err)
	}
	if err := sch.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &SchemaError{Source: source, Err: verr}
		}
		return fmt.Errorf("validate config %s: %w", source, err)
	}
	return nil
}
