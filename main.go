package main

import (
	"os"

	"github.com/shriram-s7/fleetdispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
