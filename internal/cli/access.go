package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCheckAccessCommand(factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "check-access",
		GroupID: groupUtility,
		Short:   "Verify the access token has the Admin API scopes the app needs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, factory, func(ctx context.Context, svc *Services) error {
				report, err := svc.Access.CheckScopes(ctx)
				if err != nil {
					return err
				}
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
				if len(report.Missing) > 0 {
					return fmt.Errorf("missing scopes: %s (add them under the app's Admin API scopes)", strings.Join(report.Missing, ", "))
				}
				return nil
			})
		},
	}
}
