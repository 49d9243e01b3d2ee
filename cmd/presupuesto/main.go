package main

import (
	"fmt"
	"os"

	"github.com/vsinha/presupuesto/pkg/interfaces/cli/commands"
)

func main() {
	if err := commands.NewRootCmd(&commands.App{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
