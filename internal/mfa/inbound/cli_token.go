package inbound

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shandysiswandi/gomfa/internal/mfa/usecase"
	"github.com/spf13/cobra"
)

func newTokenCommand(uc uc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Session tokens issued after a verified factor",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <token>",
		Short: "Check a session token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := uc.VerifyToken(cmd.Context(), usecase.VerifyTokenInput{Token: args[0]})
			if err != nil {
				return err
			}

			resp := TokenResponse{
				Subject:   out.Subject,
				Methods:   out.Methods,
				IssuedAt:  out.IssuedAt,
				ExpiresAt: out.ExpiresAt,
			}
			return render(cmd, resp, func(w io.Writer) {
				fmt.Fprintf(w, "subject: %s\nmethods: %s\nexpires: %s\n",
					resp.Subject, strings.Join(resp.Methods, ","), resp.ExpiresAt.Format(time.RFC3339))
			})
		},
	})

	return cmd
}
