package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("header_name", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && !strings.ContainsAny(s, ": \t\r\n")
	})
	v.RegisterValidation("header_value", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	v.RegisterValidation("no_space", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), " \t\r\n")
	})

	return v
}

var messages = map[string]string{
	"gte":          "must not be negative",
	"no_space":     "must not contain whitespace",
	"header_name":  "invalid header name",
	"header_value": "header value must not contain line breaks",
}

// Validate reports every problem in cfg, sorted by path.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	for name, p := range cfg.Profiles {
		base := "profiles." + name

		if strings.TrimSpace(name) == "" {
			errs = append(errs, ValidationError{Path: "profiles", Message: "profile name is empty"})
		}

		err := validate.Struct(p)
		if err == nil {
			continue
		}

		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs = append(errs, ValidationError{Path: base, Message: err.Error()})
			continue
		}

		for _, fe := range fieldErrs {
			// Map entries come back as headers[Name].
			field := strings.NewReplacer("[", ".", "]", "").Replace(fe.Field())

			msg, ok := messages[fe.Tag()]
			if !ok {
				msg = "failed " + fe.Tag()
			}
			if fe.Tag() == "gte" || fe.Tag() == "no_space" {
				msg = strings.SplitN(field, ".", 2)[0] + " " + msg
			}

			errs = append(errs, ValidationError{Path: base + "." + field, Message: msg})
		}
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })
	return errs
}
