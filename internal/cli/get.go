package cli

import (
	"context"
	"strings"

	"rawhttp/application/http"
	"rawhttp/application/util/uri"

	"github.com/spf13/cobra"
)

func newGetCmd(o *rootOptions) *cobra.Command {
	inspectOpts := &inspectOptions{}
	var query []string

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Send a GET request",
		Example: `  rawhttp get https://api.example.com/v1/items?limit=5
  rawhttp get https://api.example.com/v1/me --token $TOKEN -e login=$.login
  rawhttp get https://api.example.com/search -q 'term=a b'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			for _, q := range query {
				key, value, _ := strings.Cut(q, "=")
				u, err := uri.AppendQuery(url, key, value)
				if err != nil {
					return err
				}
				url = u
			}

			return runRequest(cmd, o, inspectOpts, http.MethodGet, url, func(ctx context.Context, s *session) (*http.Response, error) {
				return s.Get(ctx, url)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "append an encoded NAME=VALUE query pair (repeatable)")
	inspectOpts.register(cmd)

	return cmd
}
