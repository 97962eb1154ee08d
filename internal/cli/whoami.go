package cli

import (
	"encoding/json"
	"fmt"

	"github.com/me/kitlend/internal/identity"
	"github.com/spf13/cobra"
)

func newWhoamiCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity and its role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			res := sess.Start(cmd.Context())

			if asJSON {
				data, err := json.MarshalIndent(res.Identity, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal identity: %w", err)
				}
				fmt.Fprintln(out, string(data))
				if res.Status == identity.StatusUnauthenticated && res.Reason != nil {
					return fmt.Errorf("session could not be resolved: %v", res.Reason)
				}
				return nil
			}

			if !res.Authenticated() {
				if res.Reason != nil {
					return fmt.Errorf("session could not be resolved: %v", res.Reason)
				}
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			id := res.Identity
			fmt.Fprintf(out, "Name:   %s\n", id.Name)
			fmt.Fprintf(out, "Email:  %s\n", id.Email)
			fmt.Fprintf(out, "ID:     %s\n", id.ID)
			fmt.Fprintf(out, "Role:   %s\n", id.Role)
			if id.StudentCode != "" {
				fmt.Fprintf(out, "Code:   %s\n", id.StudentCode)
			}
			if g := id.BorrowingGroupInfo; g != nil {
				fmt.Fprintf(out, "Group:  %s (%s)\n", g.GroupID, g.Role)
			}
			if res.Status == identity.StatusDegraded {
				printDegraded(out, res)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the identity as JSON")
	return cmd
}
