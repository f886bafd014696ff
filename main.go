package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/ngld/install-buildtools/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
