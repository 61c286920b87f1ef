package main

import (
	"fmt" // fmt is used to print the error that ended the program
	"os"  // os gives us the arguments and the exit status

	"github.com/simone-rolando/samba-ad-tools/internal/cli"
)

// main is the entry point for ldif-gen. All the work happens in
// cli.RunLdifGen; main only turns a returned error into a non-zero exit
// code so shell scripts can detect failure.
func main() {
	if err := cli.RunLdifGen(cli.NewEnv(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
