package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/rudderlabs/redshift-data-go/cmd/rsdata/commands"
)

func main() {
	app := &cli.App{
		Name:     "rsdata",
		Usage:    "run SQL on Redshift through the Data API",
		Commands: commands.DefaultList,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
