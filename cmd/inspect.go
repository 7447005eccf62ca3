package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/zalepa/judgefee/report"
)

// Inspect is the "inspect" subcommand: print the page count of exported
// reports.
func Inspect() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print the page count of exported PDF reports",
		ArgsUsage: "<report.pdf>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				cli.ShowSubcommandHelp(c)
				return errors.New("missing report file")
			}
			var failed int
			for _, path := range c.Args().Slice() {
				n, err := report.CountPagesFile(path)
				if err != nil {
					fmt.Fprintf(c.App.ErrWriter, "%s: error: %v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(c.App.Writer, "%s: %d page(s)\n", path, n)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d reports could not be read", failed, c.NArg())
			}
			return nil
		},
	}
}
