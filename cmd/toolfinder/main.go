// Command toolfinder queries the configured marketplace from a terminal
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/toolfinder/backend/internal/cli"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.ExecuteContext(ctx)
	stop()

	if err != nil {
		cli.PrintError(os.Stderr, err, !color.NoColor)
		os.Exit(cli.ExitCode(err))
	}
}
