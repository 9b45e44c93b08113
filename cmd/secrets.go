package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/seo-leads/internal/config"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage API keys in the OS keyring",
	Long:  "Stores credentials in the OS keyring. Keys set in config or the environment take precedence. Names: " + strings.Join(config.SecretNames(), ", ") + ".",
}

var secretsSetCmd = &cobra.Command{
	Use:   "set <name> [value]",
	Short: "Store a secret; the value is read from stdin when omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := ""
		if len(args) == 2 {
			value = args[1]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return eris.Wrap(err, "read secret from stdin")
			}
			value = strings.TrimSpace(line)
		}
		if err := config.SetSecret(args[0], value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
		return nil
	},
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteSecret(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	secretsCmd.AddCommand(secretsSetCmd, secretsDeleteCmd)
	rootCmd.AddCommand(secretsCmd)
}
