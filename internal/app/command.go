package app

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/shandysiswandi/gomfa/internal/mfa/inbound"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
	"github.com/shandysiswandi/gomfa/internal/pkg/instrument"
	"github.com/shandysiswandi/gomfa/internal/pkg/uid"
	"github.com/spf13/cobra"
)

// envCorrelationID lets a calling script tie its logs to this run.
const envCorrelationID = "MFA_CORRELATION_ID"

func (a *App) initCommands() {
	a.root = newRootCommand(a.uuid)
	a.root.AddCommand(newVersionCommand())
}

func newRootCommand(uuid uid.StringID) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gomfa",
		Short: "Email one-time passcodes and authenticator app (TOTP) codes",
		Long: `gomfa sends one-time passcodes by email and enrolls and checks
authenticator app (TOTP) codes.

Configuration is read from $CONFIG_PATH or ./config/config.yaml. Every key
can be overridden with an MFA_ prefixed environment variable, for example
MFA_MAIL_SMTP_PASSWORD for mail.smtp.password.

Exit status: 0 success, 1 internal error, 2 invalid input, 3 no secure
random source, 4 email delivery failed, 5 code or token rejected,
6 canceled or timed out.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cid := normalizeCID(os.Getenv(envCorrelationID))
			if cid == "" {
				cid = uuid.Generate()
			}
			cmd.SetContext(instrument.SetCorrelationID(cmd.Context(), cid))
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return goerror.NewInvalidFormat(err.Error())
	})
	cmd.PersistentFlags().StringP(inbound.FlagOutput, "o", "text", "output format: text or json")

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gomfa %s %s/%s %s\n", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
}

func normalizeCID(v string) string {
	if strings.ContainsAny(v, "\r\n") {
		return ""
	}
	v = strings.TrimSpace(v)
	const maxLen = 128
	if len(v) > maxLen {
		v = v[:maxLen]
	}
	return v
}
