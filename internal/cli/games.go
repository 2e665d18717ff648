package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/gemtofu/internal/api/response"
)

func newGamesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "games [id]",
		Short: "List recent games, or show one game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var result response.Game
				if err := client.Get(cmd.Context(), "/api/v1/games/"+url.PathEscape(args[0]), &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			var result response.GameList
			path := fmt.Sprintf("/api/v1/games?limit=%d", limit)
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of games to list")

	return cmd
}
