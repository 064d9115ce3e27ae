// Package main is the entry point for the kiln build tool.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/cmd/kiln/commands"
	"github.com/kilnbuild/kiln/internal/app"
	"github.com/kilnbuild/kiln/internal/core/domain"
	_ "github.com/kilnbuild/kiln/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrBuildFailed) {
			// Per-node failures were already reported by the make command.
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
