package cli

import (
	"context"
	"fmt"
	"log/slog"

	"rawhttp/application/http"
	"rawhttp/internal/inspect"

	"github.com/spf13/cobra"
)

// inspectOptions are the body checks shared by get and post.
type inspectOptions struct {
	extract []string
	jq      string
	asserts []string
	schema  string
}

func (c *inspectOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&c.extract, "extract", "e", nil, "print NAME=PATH values from a JSON body (repeatable)")
	cmd.Flags().StringVar(&c.jq, "jq", "", "print the results of a jq filter over the JSON body")
	cmd.Flags().StringArrayVarP(&c.asserts, "assert", "a", nil, "fail unless the expression holds, e.g. 'status == 200' (repeatable)")
	cmd.Flags().StringVar(&c.schema, "schema", "", "validate the JSON body against this schema file")
}

// checks holds the compiled form of inspectOptions.
type checks struct {
	extractions []inspect.Extraction
	filter      *inspect.Filter
	assertions  []*inspect.Assertion
	validator   *inspect.Validator
}

// compile fails before any request is sent when a check is malformed.
func (c *inspectOptions) compile() (*checks, error) {
	out := &checks{}

	for _, e := range c.extract {
		ex, err := inspect.ParseExtraction(e)
		if err != nil {
			return nil, err
		}
		out.extractions = append(out.extractions, ex)
	}

	if c.jq != "" {
		f, err := inspect.CompileFilter(c.jq)
		if err != nil {
			return nil, err
		}
		out.filter = f
	}

	for _, src := range c.asserts {
		a, err := inspect.CompileAssertion(src)
		if err != nil {
			return nil, err
		}
		out.assertions = append(out.assertions, a)
	}

	if c.schema != "" {
		v, err := inspect.CompileSchemaFile(c.schema)
		if err != nil {
			return nil, err
		}
		out.validator = v
	}

	return out, nil
}

type requestFunc func(ctx context.Context, s *session) (*http.Response, error)

func runRequest(cmd *cobra.Command, o *rootOptions, opts *inspectOptions, method, url string, do requestFunc) error {
	ck, err := opts.compile()
	if err != nil {
		return err
	}

	s, err := o.session(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.verbose {
		fmt.Fprint(out, s.formatter.FormatRequest(method, url, s.client.Headers()))
	}

	resp, err := do(cmd.Context(), s)
	if err != nil {
		return err
	}

	fmt.Fprint(out, s.formatter.FormatResponse(resp))

	if len(ck.extractions) > 0 {
		values, err := inspect.ExtractAll(resp.Body, ck.extractions)
		names := make([]string, 0, len(values))
		for _, e := range ck.extractions {
			if _, ok := values[e.Name]; ok {
				names = append(names, e.Name)
			}
		}
		fmt.Fprint(out, s.formatter.FormatExtracted(names, values))
		if err != nil {
			return err
		}
	}

	if ck.filter != nil {
		lines, err := ck.filter.Run(cmd.Context(), resp.Body)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
	}

	for _, a := range ck.assertions {
		if err := a.Check(resp); err != nil {
			return err
		}
		s.logger.Info("assertion passed", slog.String("assertion", a.String()))
	}

	if ck.validator != nil {
		if err := ck.validator.Validate(resp.Body); err != nil {
			return err
		}
		s.logger.Info("body matches schema", slog.String("schema", opts.schema))
	}

	return nil
}
