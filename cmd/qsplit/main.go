package main

import (
	"os"

	"github.com/qsplit-dev/qsplit/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
