package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v2"

	"github.com/zalepa/judgefee/feetable"
)

// Table is the "table" subcommand: load a fee table, list its rows and
// report duplicate regions.
func Table() *cli.Command {
	return &cli.Command{
		Name:      "table",
		Usage:     "check a region fee table",
		ArgsUsage: "[fees.csv | fees.xlsx]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "fail when a region appears more than once"},
		},
		Action: runTable,
	}
}

func runTable(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	path := e.cfg.FeeTable.Path
	if c.NArg() > 0 {
		path = c.Args().First()
	}
	if path == "" {
		return errors.New("no fee table given and fee_table.path is empty")
	}

	t, err := feetable.Load(path)
	if err != nil {
		return err
	}
	dups := printTable(c.App.Writer, c.App.ErrWriter, path, t)
	if dups > 0 && c.Bool("strict") {
		return fmt.Errorf("%s: %d duplicate region(s)", path, dups)
	}
	return nil
}

// printTable writes the rows to w and the duplicate warnings to errw, and
// returns the number of duplicated regions.
func printTable(w, errw io.Writer, path string, t *feetable.Table) int {
	money := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	re := lipgloss.NewRenderer(w)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(re.NewStyle().Foreground(lipgloss.Color("#93c5fd"))).
		Headers("Row", "Region", "FIG", "National", "Compulsory")
	for i, r := range t.Rows() {
		tbl.Row(strconv.Itoa(i+1), r.Region, money(r.FIGFee), money(r.NationalFee), money(r.CompulsoryFee))
	}
	fmt.Fprintln(w, tbl.Render())

	dups := t.Duplicates()
	fmt.Fprintf(errw, "%s: %d row(s), %d region(s), %d duplicate(s)\n", path, t.Len(), len(t.Regions()), len(dups))
	for _, d := range dups {
		fmt.Fprintf(errw, "  warning: %s\n", d)
	}
	return len(dups)
}
