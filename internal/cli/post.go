package cli

import (
	"context"
	"os"

	"rawhttp/application/http"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newPostCmd(o *rootOptions) *cobra.Command {
	inspectOpts := &inspectOptions{}
	var (
		data     string
		dataFile string
	)

	cmd := &cobra.Command{
		Use:   "post URL",
		Short: "Send a POST request",
		Example: `  rawhttp post https://api.example.com/v1/items -H 'Content-Type: application/json' -d '{"name":"n"}'
  rawhttp post https://api.example.com/v1/items --data-file item.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]

			body := data
			if dataFile != "" {
				b, err := os.ReadFile(dataFile)
				if err != nil {
					return errors.Wrap(err, "reading request body")
				}
				body = string(b)
			}

			return runRequest(cmd, o, inspectOpts, http.MethodPost, url, func(ctx context.Context, s *session) (*http.Response, error) {
				return s.Post(ctx, url, body)
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "request body")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "read the request body from a file")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")
	inspectOpts.register(cmd)

	return cmd
}
