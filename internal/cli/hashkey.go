package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jafarshop/productvariant/internal/api/middleware"
)

func newHashKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "hash-key [api-key]",
		GroupID: groupUtility,
		Short:   "Print the bcrypt hash to put in ADMIN_API_KEY_HASH",
		Long:    "hash-key hashes the given key, or the first line of stdin when no argument is given.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read api key from stdin: %w", err)
				}
				key = line
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return fmt.Errorf("api key must not be empty")
			}

			hash, err := middleware.HashAPIKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
