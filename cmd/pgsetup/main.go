package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/hmkang/pgsetup/internal/cli"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(pgsetup.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(pgsetup.ExitCodeForError(err))
	}
}
