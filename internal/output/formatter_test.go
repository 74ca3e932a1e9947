package output

import (
	"bytes"
	"testing"
	"time"

	"rawhttp/application/http"
	"rawhttp/application/http/status"
	"rawhttp/internal/bench"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type FormatterTestSuite struct {
	suite.Suite

	resp *http.Response
}

func TestFormatterTestSuite(t *testing.T) {
	suite.Run(t, new(FormatterTestSuite))
}

func (s *FormatterTestSuite) SetupTest() {
	s.resp = &http.Response{
		Proto:   "HTTP/1.1",
		Status:  status.OK,
		Headers: http.Header{"Content-Type": "application/json", "Content-Length": "7"},
		Body:    `{"x":1}`,
		Elapsed: 1234567 * time.Nanosecond,
	}
}

func (s *FormatterTestSuite) TestFormatResponsePlain() {
	f := NewFormatter(false, false)
	s.Equal("< HTTP/1.1 200 OK (1ms)\n\n{\n  \"x\": 1\n}\n", f.FormatResponse(s.resp))
}

func (s *FormatterTestSuite) TestFormatResponseVerbose() {
	f := NewFormatter(true, false)
	s.Equal(
		"< HTTP/1.1 200 OK (1ms)\n"+
			"< Content-Length: 7\n"+
			"< Content-Type: application/json\n"+
			"\n{\n  \"x\": 1\n}\n",
		f.FormatResponse(s.resp),
	)
}

func (s *FormatterTestSuite) TestFormatResponseTruncated() {
	s.resp.Truncated = true
	s.resp.Body = "partial"

	out := NewFormatter(false, false).FormatResponse(s.resp)
	s.Contains(out, "! body truncated")
	s.Contains(out, "\npartial\n")
}

func (s *FormatterTestSuite) TestFormatResponseEmptyBody() {
	s.resp.Status = status.NoContent
	s.resp.Body = ""

	s.Equal("< HTTP/1.1 204 No Content (1ms)\n", NewFormatter(false, false).FormatResponse(s.resp))
}

func (s *FormatterTestSuite) TestFormatResponseColored() {
	out := NewFormatter(false, true).FormatResponse(s.resp)
	s.Contains(out, "\x1b[32;1m200 OK\x1b[")

	s.resp.Status = status.FromCode(418)
	out = NewFormatter(false, true).FormatResponse(s.resp)
	s.Contains(out, "\x1b[31;1m418 Unsupported\x1b[")
}

func (s *FormatterTestSuite) TestFormatRequest() {
	headers := http.Header{"Accept": "*/*", "Authorization": "Bearer t"}

	s.Equal("> GET https://example.com/\n",
		NewFormatter(false, false).FormatRequest("GET", "https://example.com/", headers))

	s.Equal("> GET https://example.com/\n> Accept: */*\n> Authorization: Bearer t\n",
		NewFormatter(true, false).FormatRequest("GET", "https://example.com/", headers))
}

func (s *FormatterTestSuite) TestFormatExtracted() {
	out := NewFormatter(false, false).FormatExtracted(
		[]string{"id", "name"},
		map[string]string{"name": "n", "id": "9"},
	)
	s.Equal("id=9\nname=n\n", out)
}

func (s *FormatterTestSuite) TestFormatBench() {
	res := &bench.Result{
		Requests: 4,
		Errors:   1,
		Statuses: map[uint]int{429: 1, 200: 2},
		Total:    2 * time.Second,
		Min:      10 * time.Millisecond,
		Mean:     20 * time.Millisecond,
		P50:      15 * time.Millisecond,
		P90:      30 * time.Millisecond,
		P99:      35 * time.Millisecond,
		Max:      35 * time.Millisecond,
	}

	s.Equal(
		"BENCH https://example.com/\n"+
			"  requests: 4  errors: 1  total: 2s\n"+
			"  200 OK: 2\n"+
			"  429 Too Many Requests: 1\n"+
			"  min   10ms\n"+
			"  mean  20ms\n"+
			"  p50   15ms\n"+
			"  p90   30ms\n"+
			"  p99   35ms\n"+
			"  max   35ms\n",
		NewFormatter(false, false).FormatBench("https://example.com/", res),
	)
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "[\n  1,\n  2\n]", PrettyJSON("[1,2]"))
	assert.Equal(t, "not json", PrettyJSON("not json"))
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, ColorEnabled(bytes.NewBuffer(nil), false))
	assert.False(t, ColorEnabled(bytes.NewBuffer(nil), true))
	assert.False(t, IsTerminal(bytes.NewBuffer(nil)))
}
