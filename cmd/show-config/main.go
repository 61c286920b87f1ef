package main

import (
	"fmt"
	"os"

	"github.com/simone-rolando/samba-ad-tools/internal/cli"
)

func main() {
	if err := cli.RunShowConfig(cli.NewEnv(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
