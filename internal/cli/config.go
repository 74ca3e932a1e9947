package cli

import (
	"fmt"

	"rawhttp/internal/config"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the profile file",
	}

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the profile file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := config.Schema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the profile file and list every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.configPath)
			if err != nil {
				return err
			}

			verrs := config.Validate(cfg)
			for _, e := range verrs {
				fmt.Fprintln(cmd.OutOrStdout(), e.Error())
			}
			if len(verrs) > 0 {
				return errors.Errorf("%d problem(s) found", len(verrs))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d profile(s) ok\n", len(cfg.Profiles))
			return nil
		},
	}

	cmd.AddCommand(schema, validate)
	return cmd
}
