package main

import (
	"os"

	"rwa-mint/cmd/rwactl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
