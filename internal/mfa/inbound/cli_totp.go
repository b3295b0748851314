package inbound

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shandysiswandi/gomfa/internal/mfa/entity"
	"github.com/shandysiswandi/gomfa/internal/mfa/usecase"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
	"github.com/spf13/cobra"
)

func newTOTPCommand(uc uc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totp",
		Short: "Authenticator app (TOTP) enrollment and checks",
	}

	cmd.AddCommand(
		newTOTPSecretCommand(uc),
		newTOTPSetupCommand(uc),
		newTOTPCodeCommand(uc),
		newTOTPVerifyCommand(uc),
	)

	return cmd
}

func newTOTPSecretCommand(uc uc) *cobra.Command {
	return &cobra.Command{
		Use:   "secret",
		Short: "Print a fresh Base32 shared secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := uc.GenerateSecret(cmd.Context())
			if err != nil {
				return err
			}

			resp := SecretResponse{Secret: out.Secret}
			return render(cmd, resp, func(w io.Writer) { fmt.Fprintln(w, resp.Secret) })
		},
	}
}

type totpSetupFlags struct {
	account    string
	qr         string
	qrOut      string
	verify     bool
	attempts   int
	issueToken bool
}

func newTOTPSetupCommand(uc uc) *cobra.Command {
	flags := &totpSetupFlags{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Enroll an account in an authenticator app",
		Long: `Create a shared secret for an account and print its otpauth:// URI as a
QR code to scan with an authenticator app.

Examples:
  # QR code in the terminal
  gomfa totp setup --account user@example.com

  # PNG QR code written to a file
  gomfa totp setup --account user@example.com --qr png --qr-out qr.png

  # Scan, then confirm the app shows matching codes
  gomfa totp setup --account user@example.com --verify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTOTPSetup(cmd, uc, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.account, "account", "a", "", "account name shown in the authenticator app")
	cmd.Flags().StringVar(&flags.qr, "qr", string(entity.QRFormatText), "QR output: text, png or none")
	cmd.Flags().StringVar(&flags.qrOut, "qr-out", "", "file the png QR code is written to")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "prompt for a code from the app and verify it")
	cmd.Flags().IntVar(&flags.attempts, "attempts", 3, "verification attempts allowed with --verify")
	cmd.Flags().BoolVar(&flags.issueToken, "issue-token", false, "print a session token after a successful --verify")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runTOTPSetup(cmd *cobra.Command, uc uc, flags *totpSetupFlags) error {
	format := entity.QRFormat(flags.qr)
	if format == "none" {
		format = entity.QRFormatNone
	}
	if format == entity.QRFormatPNG && flags.qrOut == "" {
		return goerror.NewInvalidParameter("qr-out", "is required for png output")
	}

	out, err := uc.SetupTOTP(cmd.Context(), usecase.SetupTOTPInput{
		AccountName: flags.account,
		QRFormat:    format,
	})
	if err != nil {
		return err
	}

	resp := TOTPSetupResponse{Issuer: out.Issuer, Secret: out.Secret, URI: out.URI}
	if format == entity.QRFormatPNG {
		if err := os.WriteFile(flags.qrOut, out.QR, 0o600); err != nil {
			return goerror.NewServer(err)
		}
		resp.QRFile = flags.qrOut
	}

	err = render(cmd, resp, func(w io.Writer) {
		if format == entity.QRFormatText {
			fmt.Fprintln(w, string(out.QR))
		}
		fmt.Fprintf(w, "secret: %s\nuri: %s\n", resp.Secret, resp.URI)
		if resp.QRFile != "" {
			fmt.Fprintf(w, "qr: %s\n", resp.QRFile)
		}
	})
	if err != nil {
		return err
	}

	if !flags.verify {
		return nil
	}

	p := newPrompter(cmd)
	for left := max(flags.attempts, 1); left > 0; left-- {
		code, err := p.Ask("Enter the code shown in your authenticator app: ")
		if err != nil {
			return err
		}

		vr, err := verifyTOTP(cmd, uc, usecase.VerifyTOTPInput{
			Secret:     out.Secret,
			Code:       code,
			Account:    flags.account,
			IssueToken: flags.issueToken,
		})
		if err != nil {
			return err
		}
		if vr.Valid {
			return render(cmd, vr, func(w io.Writer) { printVerified(w, vr) })
		}

		if left > 1 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Invalid code, %d attempt(s) left.\n", left-1)
		}
	}

	return errCodeRejected
}

func newTOTPCodeCommand(uc uc) *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Print the current code for a secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := uc.CurrentTOTP(cmd.Context(), usecase.CurrentTOTPInput{Secret: secret})
			if err != nil {
				return err
			}

			resp := TOTPCodeResponse{Code: out.Code, RemainingSeconds: int(out.Remaining.Round(time.Second) / time.Second)}
			return render(cmd, resp, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%ds left)\n", resp.Code, resp.RemainingSeconds)
			})
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Base32 shared secret")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newTOTPVerifyCommand(uc uc) *cobra.Command {
	var (
		in   usecase.VerifyTOTPInput
		code string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a code from an authenticator app",
		Long: `Verify a code against a shared secret at the current time, allowing the
configured clock drift. Without --code the command prompts for it.

Exits with status 5 when the code is rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Code = code
			if in.Code == "" {
				var err error
				in.Code, err = newPrompter(cmd).Ask("Enter the code: ")
				if err != nil {
					return err
				}
			}

			resp, err := verifyTOTP(cmd, uc, in)
			if err != nil {
				return err
			}
			if !resp.Valid {
				return errCodeRejected
			}

			return render(cmd, resp, func(w io.Writer) { printVerified(w, resp) })
		},
	}

	cmd.Flags().StringVar(&in.Secret, "secret", "", "Base32 shared secret")
	cmd.Flags().StringVar(&code, "code", "", "code to verify")
	cmd.Flags().StringVarP(&in.Account, "account", "a", "", "account name, the token subject")
	cmd.Flags().BoolVar(&in.IssueToken, "issue-token", false, "print a session token when the code is valid")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func verifyTOTP(cmd *cobra.Command, uc uc, in usecase.VerifyTOTPInput) (VerifyResponse, error) {
	out, err := uc.VerifyTOTP(cmd.Context(), in)
	if err != nil {
		return VerifyResponse{}, err
	}

	return VerifyResponse{Valid: out.Valid, Counter: out.Counter, Token: out.Token}, nil
}
