package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shandysiswandi/gomfa/internal/pkg/goerror"
)

// Run executes the command line and returns the process exit status. An
// interrupt cancels the running command.
func (a *App) Run(args []string) int {
	ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.root.SetArgs(args)
	err := a.root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		err = goerror.NewBusiness("interrupted", goerror.CodeTimeout)
	}

	fmt.Fprintf(a.root.ErrOrStderr(), "Error: %v\n", err)

	return exitCode(err)
}

// Stop closes resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var e *goerror.Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 6
	}

	return 1
}
