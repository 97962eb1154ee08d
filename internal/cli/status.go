package cli

import (
	"fmt"
	"time"

	"github.com/me/kitlend/internal/session"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential without contacting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Server:     %s\n", cfg.Server)
			fmt.Fprintf(out, "Store:      %s\n", describeStore(store))

			token, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load credential: %w", err)
			}
			if token == "" {
				fmt.Fprintln(out, "Credential: none (run kitlend login)")
				return nil
			}

			info := session.Inspect(token)
			if !info.JWT {
				fmt.Fprintln(out, "Credential: stored (opaque)")
			} else {
				state := "valid"
				if info.IsExpired() {
					state = "expired"
				}
				fmt.Fprintf(out, "Credential: stored (JWT, %s)\n", state)
				if info.Subject != "" {
					fmt.Fprintf(out, "  Subject:  %s\n", info.Subject)
				}
				if !info.IssuedAt.IsZero() {
					fmt.Fprintf(out, "  Issued:   %s\n", info.IssuedAt.Local().Format(time.RFC3339))
				}
				if !info.Expiry.IsZero() {
					fmt.Fprintf(out, "  Expires:  %s\n", info.Expiry.Local().Format(time.RFC3339))
				}
			}

			if st, ok := store.(*session.SQLiteStore); ok {
				if at, ok, err := st.SavedAt(cmd.Context()); err == nil && ok {
					fmt.Fprintf(out, "  Saved:    %s\n", at.Local().Format(time.RFC3339))
				}
			}
			return nil
		},
	}
}

func describeStore(st session.Store) string {
	switch s := st.(type) {
	case *session.FileStore:
		return "file " + s.Path()
	case *session.SQLiteStore:
		return "sqlite"
	case *session.MemoryStore:
		return "memory"
	default:
		return fmt.Sprintf("%T", st)
	}
}
