// Package inspect pulls values out of JSON response bodies and checks
// them against JSON Schemas.
package inspect

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var (
	ErrNotJSON        = errors.New("body is not JSON")
	ErrPathNotFound   = errors.New("path not found")
	ErrInvalidExtract = errors.New("extraction must look like NAME=PATH")
)

// Extraction names a value to pull out of a body.
type Extraction struct {
	Name string
	Path string
}

// ParseExtraction parses "NAME=PATH".
func ParseExtraction(s string) (Extraction, error) {
	name, path, ok := strings.Cut(s, "=")
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if !ok || name == "" || path == "" {
		return Extraction{}, errors.Wrap(ErrInvalidExtract, s)
	}
	return Extraction{Name: name, Path: path}, nil
}

// Extract returns the value at path in body. path may be a JSONPath
// expression such as $.items[0].id or a gjson path.
// Strings come back unquoted and JSON null as "null".
func Extract(body, path string) (string, error) {
	if !gjson.Valid(body) {
		return "", ErrNotJSON
	}

	result := gjson.Get(body, toGjsonPath(path))
	if !result.Exists() {
		return "", errors.Wrap(ErrPathNotFound, path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll applies every extraction and keeps going past failures.
// The returned error lists every failed name.
func ExtractAll(body string, extractions []Extraction) (map[string]string, error) {
	values := make(map[string]string, len(extractions))
	var failed []string

	for _, e := range extractions {
		v, err := Extract(body, e.Path)
		if err != nil {
			failed = append(failed, e.Name+": "+err.Error())
			continue
		}
		values[e.Name] = v
	}

	if len(failed) > 0 {
		return values, errors.Errorf("extracting values: %s", strings.Join(failed, "; "))
	}
	return values, nil
}

func toGjsonPath(path string) string {
	if path == "$" {
		return "@this"
	}

	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	path = strings.NewReplacer(`['`, ".", `']`, "", `["`, ".", `"]`, "", "[", ".", "]", "").Replace(path)
	return strings.TrimPrefix(path, ".")
}
