// Package main provides the lintstream CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/lintstream/internal/cli"

	// Register engine libraries
	_ "github.com/leapstack-labs/lintstream/pkg/engine/builtin"
	_ "github.com/leapstack-labs/lintstream/pkg/engine/eslintcli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
