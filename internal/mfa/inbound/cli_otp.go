package inbound

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/gomfa/internal/mfa/usecase"
	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
)

const (
	retryBase = 500 * time.Millisecond
	retryCap  = 10 * time.Second
)

type otpSendFlags struct {
	to         []string
	subject    string
	digits     int
	expiry     int
	code       string
	retries    uint64
	showCode   bool
	verify     bool
	attempts   int
	issueToken bool
}

func newOTPCommand(uc uc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Email one-time passcodes",
	}

	cmd.AddCommand(newOTPSendCommand(uc))

	return cmd
}

func newOTPSendCommand(uc uc) *cobra.Command {
	flags := &otpSendFlags{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a passcode by email",
		Long: `Generate a passcode and email it to one or more recipients.

With --verify the command prompts for the code that arrived and checks it
against the expiry written in the email. Verification needs one recipient.

Examples:
  # Send a 6 digit code
  gomfa otp send --to user@example.com

  # Send and wait for the user to type it back
  gomfa otp send --to user@example.com --verify --issue-token

  # Several recipients, each with its own code
  gomfa otp send --to a@example.com --to b@example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOTPSend(cmd, uc, flags)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.to, "to", "t", nil, "recipient email address (repeatable)")
	cmd.Flags().StringVarP(&flags.subject, "subject", "s", "", "email subject (default from mfa.otp.subject)")
	cmd.Flags().IntVarP(&flags.digits, "digits", "d", 0, "code length, 4 to 10 (default from mfa.otp.digits)")
	cmd.Flags().IntVar(&flags.expiry, "expiry", 0, "expiry in minutes written into the email (default from mfa.otp.expiry_minutes)")
	cmd.Flags().StringVar(&flags.code, "code", "", "send this code instead of generating one")
	cmd.Flags().Uint64Var(&flags.retries, "retries", 0, "retry a failed delivery this many times")
	cmd.Flags().BoolVar(&flags.showCode, "show-code", false, "print the sent code")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "prompt for the received code and verify it")
	cmd.Flags().IntVar(&flags.attempts, "attempts", 3, "verification attempts allowed with --verify")
	cmd.Flags().BoolVar(&flags.issueToken, "issue-token", false, "print a session token after a successful --verify")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runOTPSend(cmd *cobra.Command, uc uc, flags *otpSendFlags) error {
	ctx := cmd.Context()

	recipients := lo.Uniq(lo.Compact(lo.Map(flags.to, func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	})))
	if len(recipients) == 0 {
		return goerror.NewInvalidParameter("to", "at least one recipient is required")
	}

	inputs := lo.Map(recipients, func(to string, _ int) usecase.DispatchOTPEmailInput {
		return usecase.DispatchOTPEmailInput{
			RecipientEmail: to,
			Subject:        flags.subject,
			OTPCode:        flags.code,
			Digits:         flags.digits,
			ExpiryMinutes:  flags.expiry,
		}
	})

	if len(inputs) > 1 {
		if flags.verify {
			return goerror.NewInvalidParameter("verify", "needs exactly one recipient")
		}
		return runOTPSendBatch(ctx, cmd, uc, inputs, flags.showCode)
	}

	out, err := dispatchWithRetry(ctx, uc, inputs[0], flags.retries)
	if err != nil {
		return err
	}

	resp := OTPSendResponse{Recipient: recipients[0], IssuedAt: out.IssuedAt, ExpiresAt: out.ExpiresAt}
	if flags.showCode {
		resp.OTPCode = out.OTPCode
	}
	if err := render(cmd, resp, func(w io.Writer) { printSent(w, resp) }); err != nil {
		return err
	}

	if !flags.verify {
		return nil
	}

	return runOTPVerify(ctx, cmd, uc, recipients[0], out, flags)
}

func runOTPSendBatch(ctx context.Context, cmd *cobra.Command, uc uc, inputs []usecase.DispatchOTPEmailInput, showCode bool) error {
	results, err := uc.DispatchOTPEmailBatch(ctx, inputs)
	if err != nil {
		return err
	}

	resp := OTPSendBatchResponse{
		Results: lo.Map(results, func(r usecase.DispatchOTPEmailBatchResult, _ int) OTPSendResponse {
			item := OTPSendResponse{Recipient: r.Input.RecipientEmail}
			if r.Err != nil {
				item.Error = r.Err.Error()
				return item
			}
			item.IssuedAt, item.ExpiresAt = r.Output.IssuedAt, r.Output.ExpiresAt
			if showCode {
				item.OTPCode = r.Output.OTPCode
			}
			return item
		}),
	}
	resp.Failed = lo.CountBy(results, func(r usecase.DispatchOTPEmailBatchResult) bool { return r.Err != nil })
	resp.Sent = len(results) - resp.Failed

	err = render(cmd, resp, func(w io.Writer) {
		for _, item := range resp.Results {
			printSent(w, item)
		}
		fmt.Fprintf(w, "%d sent, %d failed\n", resp.Sent, resp.Failed)
	})
	if err != nil {
		return err
	}

	if resp.Failed > 0 {
		return goerror.NewDelivery(fmt.Errorf("%d of %d deliveries failed", resp.Failed, len(results)))
	}

	return nil
}

// dispatchWithRetry retries transport failures only, backing off on a capped
// Fibonacci schedule.
func dispatchWithRetry(ctx context.Context, uc uc, in usecase.DispatchOTPEmailInput, retries uint64) (*usecase.DispatchOTPEmailOutput, error) {
	var out *usecase.DispatchOTPEmailOutput
	attempt := atomic.NewUint64(0)

	b := retry.NewFibonacci(retryBase)
	b = retry.WithCappedDuration(retryCap, b)
	b = retry.WithMaxRetries(retries, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		n := attempt.Inc()

		var err error
		out, err = uc.DispatchOTPEmail(ctx, in)
		if goerror.IsCode(err, goerror.CodeDelivery) && n <= retries {
			slog.WarnContext(ctx, "otp email delivery failed, retrying", "attempt", n, "recipient", in.RecipientEmail, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func runOTPVerify(ctx context.Context, cmd *cobra.Command, uc uc, recipient string, sent *usecase.DispatchOTPEmailOutput, flags *otpSendFlags) error {
	p := newPrompter(cmd)
	attempts := max(flags.attempts, 1)

	for left := attempts; left > 0; left-- {
		candidate, err := p.Ask(fmt.Sprintf("Enter the code sent to %s: ", recipient))
		if err != nil {
			return err
		}

		out, err := uc.VerifyOTP(ctx, usecase.VerifyOTPInput{
			Subject:    recipient,
			Code:       sent.OTPCode,
			Candidate:  candidate,
			IssuedAt:   sent.IssuedAt,
			ExpiresAt:  sent.ExpiresAt,
			IssueToken: flags.issueToken,
		})
		if err != nil {
			return err
		}

		if out.Expired {
			return errCodeExpired
		}
		if out.Valid {
			resp := VerifyResponse{Valid: true, Token: out.Token}
			return render(cmd, resp, func(w io.Writer) { printVerified(w, resp) })
		}

		if left > 1 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Invalid code, %d attempt(s) left.\n", left-1)
		}
	}

	return errCodeRejected
}

func printSent(w io.Writer, r OTPSendResponse) {
	if r.Error != "" {
		fmt.Fprintf(w, "%s: failed: %s\n", r.Recipient, r.Error)
		return
	}

	fmt.Fprintf(w, "%s: sent, expires %s\n", r.Recipient, r.ExpiresAt.Format(time.RFC3339))
	if r.OTPCode != "" {
		fmt.Fprintf(w, "code: %s\n", r.OTPCode)
	}
}

func printVerified(w io.Writer, r VerifyResponse) {
	fmt.Fprintln(w, "verified")
	if r.Token != "" {
		fmt.Fprintf(w, "token: %s\n", r.Token)
	}
}
