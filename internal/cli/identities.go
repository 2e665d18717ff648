package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/gemtofu/internal/api/response"
)

func newIdentitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identities [fingerprint]",
		Short: "Count trusted identities, or look one up",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var result response.Identity
				if err := client.Get(cmd.Context(), "/api/v1/identities/"+url.PathEscape(args[0]), &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			var result response.IdentityCount
			if err := client.Get(cmd.Context(), "/api/v1/identities", &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}
}
