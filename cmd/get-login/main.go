package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/simone-rolando/samba-ad-tools/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.RunGetLogin(ctx, cli.NewEnv(), os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
