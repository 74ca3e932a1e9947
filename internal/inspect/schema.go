package inspect

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors lists every schema violation found in a body.
type ValidationErrors []string

func (ve ValidationErrors) Error() string {
	return "schema validation failed: " + strings.Join(ve, "; ")
}

type Validator struct {
	schema *jsonschema.Schema
}

// CompileSchemaFile compiles the schema stored at path.
func CompileSchemaFile(path string) (*Validator, error) {
	schema, err := jsonschema.NewCompiler().Compile(path)
	if err != nil {
		return nil, errors.Wrap(err, "compiling schema")
	}
	return &Validator{schema: schema}, nil
}

func CompileSchema(src string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(src)); err != nil {
		return nil, errors.Wrap(err, "adding schema")
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, errors.Wrap(err, "compiling schema")
	}
	return &Validator{schema: schema}, nil
}

// Validate checks body against the schema. A body that breaks the schema
// yields ValidationErrors; a body that is not JSON yields ErrNotJSON.
func (v *Validator) Validate(body string) error {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return errors.Wrap(ErrNotJSON, err.Error())
	}

	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return errors.Wrap(err, "validating body")
	}
	return collect(ve, nil)
}

// collect flattens the cause tree down to its leaves.
func collect(ve *jsonschema.ValidationError, out ValidationErrors) ValidationErrors {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, loc+": "+ve.Message)
	}
	for _, c := range ve.Causes {
		out = collect(c, out)
	}
	return out
}
