package main

import (
	"os"

	"github.com/example/sfl-lite/cmd/sfl/internal/cli"
	"github.com/example/sfl-lite/cmd/sfl/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
