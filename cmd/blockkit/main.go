package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/reoring/blockkit/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "blockkit:", err)
	}
	os.Exit(cli.ExitCode(err))
}
