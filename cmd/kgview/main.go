package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/kgview/internal/cli"
	kgerrors "github.com/matzehuels/kgview/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", kgerrors.UserMessage(err))
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}

// exitCode separates bad invocations (2) from runtime failures (1).
func exitCode(err error) int {
	switch kgerrors.GetCode(err) {
	case kgerrors.ErrCodeInvalidInput, kgerrors.ErrCodeInvalidFormat,
		kgerrors.ErrCodeInvalidPath, kgerrors.ErrCodeInvalidConfig:
		return 2
	}
	return 1
}
