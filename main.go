package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/compozy/http-client-mcp/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.RootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// Exit with error code 1 if command execution fails
		os.Exit(1)
	}
}
