// Package cli wires the rawhttp commands.
package cli

import (
	"context"
	stdtls "crypto/tls"
	"log/slog"
	"sort"
	"strings"
	"time"

	"rawhttp/application/http"
	"rawhttp/application/http/actor/client"
	"rawhttp/internal/config"
	"rawhttp/internal/inspect"
	"rawhttp/internal/log"
	"rawhttp/internal/output"
	"rawhttp/transport/tls"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	Version        = "0.1.0"
	DefaultTimeout = 30 * time.Second
)

const RequestIDHeader = "X-Request-ID"

var ErrInvalidHeader = errors.New("header must look like 'Name: value'")

type rootOptions struct {
	configPath   string
	profile      string
	insecure     bool
	strictChunks bool
	timeout      time.Duration
	verbose      bool
	noColor      bool
	logLevel     string
	logFormat    string

	headers   []string
	token     string
	requestID bool
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "rawhttp",
		Short:   "A small HTTP/1.1 over TLS client",
		Version: Version,
		Long: `rawhttp speaks HTTP/1.1 over TLS directly on the socket.

It sends one request per connection and prints what comes back,
decoding chunked bodies and optionally extracting JSON values or
checking the body against a JSON Schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "profile file (default ~/"+config.DefaultFileName+")")
	flags.StringVarP(&o.profile, "profile", "p", "", "profile to apply")
	flags.BoolVarP(&o.insecure, "insecure", "k", false, "skip certificate verification")
	flags.BoolVar(&o.strictChunks, "strict-chunks", false, "fail on malformed chunk sizes instead of truncating")
	flags.DurationVarP(&o.timeout, "timeout", "t", DefaultTimeout, "per-request timeout")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "show request and response headers")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&o.logFormat, "log-format", string(log.FormatText), "log format (text, json)")
	flags.StringArrayVarP(&o.headers, "header", "H", nil, "extra header 'Name: value' (repeatable)")
	flags.StringVar(&o.token, "token", "", "bearer token for the Authorization header")
	flags.BoolVar(&o.requestID, "request-id", false, "send a random X-Request-ID header")

	cmd.AddCommand(
		newGetCmd(o),
		newPostCmd(o),
		newBenchCmd(o),
		newTokenCmd(),
		newConfigCmd(o),
	)

	return cmd
}

// session is what a command needs once flags and profile are merged.
type session struct {
	client    *client.Client
	logger    *slog.Logger
	formatter *output.Formatter
	timeout   time.Duration
}

func (o *rootOptions) session(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if verrs := config.Validate(cfg); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, e := range verrs {
			msgs[i] = e.Error()
		}
		return nil, errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	profile, err := cfg.Profile(o.profile)
	if err != nil {
		return nil, err
	}

	logCfg := log.FromEnv(log.Config{
		Level:  "warn",
		Format: log.Format(o.logFormat),
		Output: cmd.ErrOrStderr(),
	})
	if cmd.Flags().Changed("log-level") {
		logCfg.Level = o.logLevel
	}
	logger := log.New(logCfg)

	var requestID string
	if o.requestID {
		requestID = uuid.NewString()
		logger = logger.With(slog.String("request_id", requestID))
	}

	timeout := o.timeout
	if !cmd.Flags().Changed("timeout") && profile.Timeout > 0 {
		timeout = profile.Timeout
	}

	connector := tls.NewConnector(tls.Options{
		MinVersion:         stdtls.VersionTLS12,
		InsecureSkipVerify: o.insecure || profile.Insecure,
		DialTimeout:        timeout,
	})

	opts := client.DefaultOptions
	opts.Decode.StrictChunkSize = o.strictChunks || profile.StrictChunks

	c := client.New(connector, logger, clock.New(), opts)

	names := make([]string, 0, len(profile.Headers))
	for name := range profile.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.SetHeader(name, profile.Headers[name])
	}

	for _, h := range o.headers {
		name, value, err := parseHeader(h)
		if err != nil {
			return nil, err
		}
		c.SetHeader(name, value)
	}

	token := o.token
	if token == "" {
		if token, err = profile.ResolveToken(o.profile); err != nil {
			return nil, err
		}
	}
	if token != "" {
		if exp, ok := inspect.TokenExpiry(token); ok && exp.Before(time.Now()) {
			logger.Warn("bearer token has expired", slog.Time("expired_at", exp))
		}
		c.HeaderAuthorization(token)
	}

	if requestID != "" {
		c.SetHeader(RequestIDHeader, requestID)
	}

	return &session{
		client:    c,
		logger:    logger,
		formatter: output.NewFormatter(o.verbose, output.ColorEnabled(cmd.OutOrStdout(), o.noColor)),
		timeout:   timeout,
	}, nil
}

func parseHeader(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return "", "", errors.Wrap(ErrInvalidHeader, s)
	}
	return name, strings.TrimSpace(value), nil
}

// Get runs one GET under the session timeout.
func (s *session) Get(ctx context.Context, url string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Get(ctx, url)
}

func (s *session) Post(ctx context.Context, url, body string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Post(ctx, url, body)
}
