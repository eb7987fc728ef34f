package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

func newTokenCmd(app *App) *cobra.Command {
	var viewer domain.Viewer
	var capability string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a viewer access token for the reports API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Tokens == nil {
				return errors.New("jwt.secret is not configured")
			}
			if capability != "" {
				c, err := domain.ParseOwnerCapability(capability)
				if err != nil {
					return err
				}
				viewer.Capability = c
			}

			token, err := app.Tokens.GenerateAccessToken(viewer)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&viewer.ID, "viewer", "", "Owner ID (token subject)")
	cmd.Flags().StringVar(&viewer.OrgID, "org", "", "Organization claim")
	cmd.Flags().StringVar(&viewer.Role, "role", "owner", "Role claim")
	cmd.Flags().StringVar(&capability, "capability", "", "Capability claim: CHARGE, SWAP or BOTH")
	cmd.MarkFlagRequired("viewer")

	return cmd
}
