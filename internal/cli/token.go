package cli

import (
	"bufio"
	"fmt"
	"strings"

	"rawhttp/internal/config"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage profile tokens in the OS keyring",
		Long: `Tokens stored here are used by profiles that set "keyring: true".
The keyring entry is named after the profile.`,
	}

	set := &cobra.Command{
		Use:   "set PROFILE [TOKEN]",
		Short: "Store a token, read from stdin when TOKEN is omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 2 {
				token = args[1]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.Wrap(err, "reading token")
				}
				token = line
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("token is empty")
			}

			if err := config.StoreToken(args[0], token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored token for %s\n", args[0])
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete PROFILE",
		Short: "Remove a stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteToken(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted token for %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}
