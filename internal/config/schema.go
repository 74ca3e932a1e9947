package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Schema returns the JSON Schema of the profile file.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{
		FieldNameTag:   "yaml",
		ExpandedStruct: true,
	}

	b, err := json.MarshalIndent(r.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling schema")
	}
	return b, nil
}
