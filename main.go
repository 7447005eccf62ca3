package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/zalepa/judgefee/cmd"
)

var version = "v0.1.0-dev"

func main() {
	app := &cli.App{
		Name:    "judgefee",
		Usage:   "compute and export gymnastics judge fees",
		Version: version,
		Flags:   cmd.GlobalFlags(),
		Commands: []*cli.Command{
			cmd.Serve(),
			cmd.Calc(),
			cmd.Table(),
			cmd.Inspect(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
