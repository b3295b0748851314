package inbound

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
	"github.com/spf13/cobra"
)

// FlagOutput is the persistent root flag selecting text or json output.
const FlagOutput = "output"

var (
	errCodeRejected = goerror.NewBusiness("code rejected", goerror.CodeUnauthorized)
	errCodeExpired  = goerror.NewBusiness("code expired", goerror.CodeUnauthorized)
	errNoInput      = goerror.NewBusiness("no code entered", goerror.CodeInvalidParameter)
)

// RegisterCommands attaches the otp, totp and token command groups to root.
func RegisterCommands(root *cobra.Command, uc uc) {
	root.AddCommand(
		newOTPCommand(uc),
		newTOTPCommand(uc),
		newTokenCommand(uc),
	)
}

func isJSONOutput(cmd *cobra.Command) bool {
	f := cmd.Flag(FlagOutput)
	return f != nil && f.Value.String() == "json"
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// render writes data as JSON when requested, otherwise calls text.
func render(cmd *cobra.Command, data any, text func(w io.Writer)) error {
	if isJSONOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), data)
	}
	text(cmd.OutOrStdout())
	return nil
}

// prompter reads one answer per line from the command's stdin. Prompts go to
// stderr so stdout stays parseable.
type prompter struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, in: bufio.NewReader(cmd.InOrStdin())}
}

func (p *prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.cmd.ErrOrStderr(), question)

	line, err := p.in.ReadString('\n')
	if line = strings.TrimSpace(line); line != "" {
		return line, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	return "", errNoInput
}
