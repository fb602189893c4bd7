package main

import (
	"os"

	"github.com/quantlab-io/scorecast/cmd/scorecast/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
