package inspect

import (
	"context"
	"encoding/json"

	"github.com/itchyny/gojq"
	"github.com/pkg/errors"
)

// Filter is a compiled jq program.
type Filter struct {
	code *gojq.Code
}

func CompileFilter(src string) (*Filter, error) {
	query, err := gojq.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "parsing jq filter")
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, errors.Wrap(err, "compiling jq filter")
	}

	return &Filter{code: code}, nil
}

// Run applies the filter to a JSON body and returns one line per result.
// Strings come back raw, as jq -r prints them; everything else as JSON.
func (f *Filter) Run(ctx context.Context, body string) ([]string, error) {
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, errors.Wrap(ErrNotJSON, err.Error())
	}

	var out []string
	iter := f.code.RunWithContext(ctx, doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, errors.Wrap(err, "running jq filter")
		}

		if s, isStr := v.(string); isStr {
			out = append(out, s)
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "encoding jq result")
		}
		out = append(out, string(b))
	}

	return out, nil
}
