package main

import (
	"os"

	"github.com/alphapulse/pulse/cmd/pulse/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
