package main

import (
	"fmt"
	"os"

	"github.com/vk/taskgridgo/internal/cli"
)

// main is the entrypoint for the taskgrid application.
func main() {
	if err := cli.Root(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
