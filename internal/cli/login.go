package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/me/kitlend/internal/identity"
	"github.com/me/kitlend/pkg/api"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the lending backend",
		Long:  "Authenticate with email and password, store the returned credential and resolve your role.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reader := bufio.NewReader(cmd.InOrStdin())

			var err error
			if username == "" {
				if username, err = prompt(out, reader, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(out, reader, "Password: "); err != nil {
					return err
				}
			}
			if username == "" || password == "" {
				return errors.New("email and password are required")
			}

			res, err := sess.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %s", api.Message(err))
			}
			if !res.Authenticated() {
				return fmt.Errorf("signed in, but your profile could not be loaded: %v", res.Reason)
			}

			fmt.Fprintf(out, "Logged in as %s (%s)\n", displayName(res), res.Identity.Role)
			if res.Status == identity.StatusDegraded {
				printDegraded(out, res)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted if omitted)")
	return cmd
}

func prompt(out io.Writer, r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func displayName(res identity.Result) string {
	if res.Identity.Name != "" {
		return res.Identity.Name
	}
	return res.Identity.Email
}

func printDegraded(out io.Writer, res identity.Result) {
	fmt.Fprintf(out, "Warning: %v; your role may be shown with fewer privileges than you have.\n", res.Reason)
}
