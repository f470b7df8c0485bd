package main

import (
	"os"

	"github.com/businessbook/directory/cmd/directoryctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
