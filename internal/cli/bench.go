package cli

import (
	"fmt"

	"rawhttp/internal/bench"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
)

func newBenchCmd(o *rootOptions) *cobra.Command {
	opts := bench.DefaultOptions

	cmd := &cobra.Command{
		Use:   "bench URL",
		Short: "Issue many GETs and report latency",
		Long: `bench sends -n GET requests over -c concurrent workers.
Every request opens its own TLS connection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]

			s, err := o.session(cmd)
			if err != nil {
				return err
			}

			res, err := bench.NewRunner(s, s.logger, clock.New(), opts).Run(cmd.Context(), url)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), s.formatter.FormatBench(url, res))
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Requests, "requests", "n", bench.DefaultOptions.Requests, "number of requests")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", bench.DefaultOptions.Concurrency, "number of concurrent workers")
	cmd.Flags().Float64Var(&opts.Rate, "rate", 0, "maximum requests started per second (0 means unlimited)")

	return cmd
}
