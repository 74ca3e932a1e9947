package inspect

import (
	"encoding/json"

	"rawhttp/application/http"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

var ErrAssertionFailed = errors.New("assertion failed")

// Assertion is a boolean expression over a response. It sees
//
//	status      the status code
//	reason      the reason phrase, empty for unsupported codes
//	headers     the header map
//	body        the body text
//	json        the body decoded as JSON, nil when it is not JSON
//	elapsed_ms  milliseconds from dial to the end of the body
//	truncated   whether a chunked body ended early
type Assertion struct {
	src     string
	program *vm.Program
}

func assertionEnv(resp *http.Response) map[string]any {
	env := map[string]any{
		"status":     0,
		"reason":     "",
		"headers":    map[string]string{},
		"body":       "",
		"json":       any(nil),
		"elapsed_ms": int64(0),
		"truncated":  false,
	}
	if resp == nil {
		return env
	}

	var doc any
	if err := json.Unmarshal([]byte(resp.Body), &doc); err != nil {
		doc = nil
	}

	headers := map[string]string(resp.Headers)
	if headers == nil {
		headers = map[string]string{}
	}

	env["status"] = int(resp.Status.Code)
	env["reason"] = resp.Status.ReasonPhrase
	env["headers"] = headers
	env["body"] = resp.Body
	env["json"] = doc
	env["elapsed_ms"] = resp.Elapsed.Milliseconds()
	env["truncated"] = resp.Truncated
	return env
}

func CompileAssertion(src string) (*Assertion, error) {
	program, err := expr.Compile(src, expr.Env(assertionEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "compiling assertion %q", src)
	}
	return &Assertion{src: src, program: program}, nil
}

func (a *Assertion) String() string { return a.src }

// Check evaluates the assertion against resp. A false result is
// ErrAssertionFailed.
func (a *Assertion) Check(resp *http.Response) error {
	out, err := expr.Run(a.program, assertionEnv(resp))
	if err != nil {
		return errors.Wrapf(err, "evaluating assertion %q", a.src)
	}
	if ok, _ := out.(bool); !ok {
		return errors.Wrap(ErrAssertionFailed, a.src)
	}
	return nil
}
