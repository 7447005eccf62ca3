package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/zalepa/judgefee/config"
	"github.com/zalepa/judgefee/fee"
	"github.com/zalepa/judgefee/report"
	"github.com/zalepa/judgefee/roster"
)

// Calc is the "calc" subcommand: apply a roster file (or a directory of
// them) and write the fee report next to each input.
func Calc() *cli.Command {
	return &cli.Command{
		Name:      "calc",
		Usage:     "compute judge fees from a YAML roster and export the report",
		ArgsUsage: "<roster.yaml | directory>",
		Description: "If a directory is given, every *.yaml and *.yml file in it is processed and\n" +
			"the reports are written alongside each roster.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "format",
				Usage: "report formats to write: pdf, csv, xlsx, txt or none",
				Value: cli.NewStringSlice("pdf"),
			},
			&cli.StringFlag{Name: "pdf", Usage: "output PDF path (single file mode only)"},
			&cli.StringFlag{Name: "csv", Usage: "output CSV path (single file mode only)"},
			&cli.StringFlag{Name: "xlsx", Usage: "output XLSX path (single file mode only)"},
			&cli.StringFlag{Name: "txt", Usage: "output plain text path (single file mode only)"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not print result cards"},
			feeTablePathFlag(),
		},
		Action: runCalc,
	}
}

// outputs maps a report format to the file it is written to.
type outputs map[string]string

var formatOrder = []string{"pdf", "csv", "xlsx", "txt"}

func parseFormats(values []string) ([]string, error) {
	var formats []string
	for _, v := range values {
		for _, f := range strings.Split(v, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			switch {
			case f == "none" || f == "":
			case slices.Contains(formatOrder, f):
				if !slices.Contains(formats, f) {
					formats = append(formats, f)
				}
			default:
				return nil, fmt.Errorf("unknown format %q (want pdf, csv, xlsx, txt or none)", f)
			}
		}
	}
	return formats, nil
}

// defaultOutputs places each format next to the roster, sharing its base
// name.
func defaultOutputs(rosterPath string, formats []string) outputs {
	dir := filepath.Dir(rosterPath)
	base := strings.TrimSuffix(filepath.Base(rosterPath), filepath.Ext(rosterPath))
	outs := make(outputs, len(formats))
	for _, f := range formats {
		outs[f] = filepath.Join(dir, base+"."+f)
	}
	return outs
}

func runCalc(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowSubcommandHelp(c)
		return errors.New("missing roster file or directory")
	}
	formats, err := parseFormats(c.StringSlice("format"))
	if err != nil {
		return err
	}

	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	inputPath := c.Args().First()
	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}

	calc := &calculator{
		cfg:    e.cfg,
		lookup: e.openFeeTable().Wait(c.Context),
		logger: e.logger,
		stdout: c.App.Writer,
		stderr: c.App.ErrWriter,
		print:  !c.Bool("quiet"),
	}

	if !info.IsDir() {
		outs := defaultOutputs(inputPath, formats)
		for _, f := range formatOrder {
			if p := c.String(f); p != "" {
				outs[f] = p
			}
		}
		return calc.run(inputPath, outs)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(inputPath, pattern))
		if err != nil {
			return fmt.Errorf("error globbing directory: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return fmt.Errorf("no roster files found in %s", inputPath)
	}

	failed := 0
	for _, file := range files {
		if err := calc.run(file, defaultOutputs(file, formats)); err != nil {
			fmt.Fprintf(calc.stderr, "%s: error: %v\n", filepath.Base(file), err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d roster files failed", failed, len(files))
	}
	return nil
}

type calculator struct {
	cfg    config.Config
	lookup fee.RateLookup
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
	print  bool
}

func (k *calculator) run(path string, outs outputs) error {
	entries, err := readRoster(path)
	if err != nil {
		return err
	}

	store := roster.New(k.cfg.FeeOptions(), roster.WithLookup(k.lookup), roster.WithLogger(k.logger))
	warnings, err := applyRoster(store, k.cfg.AppendSeed(), entries)
	if err != nil {
		return err
	}
	_, results := store.Results()
	ro := k.cfg.ReportOptions()

	var written []string
	for _, f := range formatOrder {
		out, ok := outs[f]
		if !ok {
			continue
		}
		if err := writeReport(f, out, results, ro); err != nil {
			return fmt.Errorf("error writing %s: %w", strings.ToUpper(f), err)
		}
		written = append(written, filepath.Base(out))
	}

	if k.print {
		if err := report.RenderTerminal(k.stdout, results, ro); err != nil {
			return err
		}
	}

	target := "no files written"
	if len(written) > 0 {
		target = "→ " + strings.Join(written, ", ")
	}
	fmt.Fprintf(k.stderr, "%s: %d judge(s), total %s %s\n",
		filepath.Base(path), len(results), fee.FormatMoney(fee.Sum(results)), target)
	for _, w := range warnings {
		fmt.Fprintf(k.stderr, "  %s\n", w)
	}
	return nil
}

func writeReport(format, path string, results []fee.Result, o report.Options) error {
	if format == "pdf" {
		return report.WritePDFFile(path, results, o)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		err = report.WriteCSV(f, results, o)
	case "xlsx":
		err = report.WriteXLSX(f, results, o)
	case "txt":
		_, err = io.WriteString(f, report.Text(results, o))
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
