// Package output renders requests and responses for the terminal.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"rawhttp/application/http"
	"rawhttp/application/http/status"
	"rawhttp/internal/bench"

	"github.com/fatih/color"
)

type Formatter struct {
	Verbose bool

	colors *ColorScheme
}

func NewFormatter(verbose, colored bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		colors:  newColorScheme(colored),
	}
}

// FormatRequest renders the request line and, when verbose, the headers
// that will go out.
func (f *Formatter) FormatRequest(method, url string, headers http.Header) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "> %s %s\n", f.colors.Method.Sprint(method), f.colors.URL.Sprint(url))
	if f.Verbose {
		for _, name := range headers.Names() {
			fmt.Fprintf(&buf, "> %s: %s\n", f.colors.HeaderKey.Sprint(name), headers[name])
		}
	}

	return buf.String()
}

// FormatResponse renders the status line, headers when verbose, and the
// body, pretty-printed when it is JSON.
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "< %s %s (%s)\n",
		resp.Proto,
		f.statusColor(resp.Status).Sprint(resp.Status.String()),
		resp.Elapsed.Round(time.Millisecond),
	)

	if f.Verbose {
		for _, name := range resp.Headers.Names() {
			fmt.Fprintf(&buf, "< %s: %s\n", f.colors.HeaderKey.Sprint(name), resp.Headers[name])
		}
	}

	if resp.Truncated {
		buf.WriteString(f.colors.Warning.Sprint("! body truncated at a malformed chunk size"))
		buf.WriteString("\n")
	}

	if resp.Body != "" {
		buf.WriteString("\n")
		buf.WriteString(PrettyJSON(resp.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatExtracted renders name=value lines in the given order.
func (f *Formatter) FormatExtracted(names []string, values map[string]string) string {
	var buf strings.Builder
	for _, name := range names {
		fmt.Fprintf(&buf, "%s=%s\n", f.colors.Label.Sprint(name), values[name])
	}
	return buf.String()
}

// FormatBench renders a bench summary with status codes in ascending order.
func (f *Formatter) FormatBench(url string, res *bench.Result) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "%s %s\n", f.colors.Method.Sprint("BENCH"), f.colors.URL.Sprint(url))
	fmt.Fprintf(&buf, "  requests: %d  errors: %d  total: %s\n",
		res.Requests, res.Errors, res.Total.Round(time.Millisecond))

	codes := make([]uint, 0, len(res.Statuses))
	for code := range res.Statuses {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		st := status.FromCode(code)
		fmt.Fprintf(&buf, "  %s: %d\n", f.statusColor(st).Sprint(st.String()), res.Statuses[code])
	}

	row := func(label string, d time.Duration) {
		fmt.Fprintf(&buf, "  %s %s\n", f.colors.Label.Sprintf("%-5s", label), d.Round(time.Microsecond))
	}
	row("min", res.Min)
	row("mean", res.Mean)
	row("p50", res.P50)
	row("p90", res.P90)
	row("p99", res.P99)
	row("max", res.Max)

	return buf.String()
}

func (f *Formatter) statusColor(s status.Status) *color.Color {
	switch {
	case s.IsSuccess():
		return f.colors.StatusOK
	case s.IsRedirect():
		return f.colors.StatusWarn
	default:
		return f.colors.StatusError
	}
}

// PrettyJSON indents s when it is valid JSON and returns it untouched otherwise.
func PrettyJSON(s string) string {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(s), "", "  "); err != nil {
		return s
	}
	return out.String()
}
