package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/simone-rolando/samba-ad-tools/internal/cli"
)

// main is the entry point for domain-adduser. Ctrl-C cancels the running
// samba-tool invocation.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.RunAddUser(ctx, cli.NewEnv(), os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
