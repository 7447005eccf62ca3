package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/zalepa/judgefee/fee"
	"github.com/zalepa/judgefee/feetable"
	"github.com/zalepa/judgefee/report"
	"github.com/zalepa/judgefee/roster"
)

const testRoster = `judges:
  - name: Dana Reyes
    optionalRoutines: 4
    figFee: 10
    compulsoryRoutines: 2
    compulsoryFee: 5
    mileage: 20
    mileageRate: "0.50"
    meetRate: 25
  - name: Lee
    level: national
    region: Region 3
    optionalRoutines: 3
    shoeSize: 9
`

const testFees = "region,figFee,nationalFee,compulsoryFee\nRegion 3,12,9,5\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := &cli.App{
		Name:      "judgefee",
		Flags:     GlobalFlags(),
		Commands:  []*cli.Command{Calc(), Table(), Inspect()},
		Writer:    &stdout,
		ErrWriter: &stderr,
	}
	// A config path that does not exist selects the defaults.
	full := append([]string{"judgefee", "--config", filepath.Join(t.TempDir(), "none.yaml")}, args...)
	err := app.Run(full)
	return stdout.String(), stderr.String(), err
}

func TestParseRoster(t *testing.T) {
	entries, err := parseRoster(strings.NewReader(testRoster))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0.50", entries[0].values["mileageRate"], "values keep their raw text")
	assert.Equal(t, []string{"name", "level", "region", "optionalRoutines", "shoeSize"}, entries[1].keys)

	entries, err = parseRoster(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = parseRoster(strings.NewReader("judges: [1, 2]"))
	assert.ErrorContains(t, err, "must be a mapping")

	_, err = parseRoster(strings.NewReader("judges:\n  - name: [a, b]\n"))
	assert.ErrorContains(t, err, "name must be a single value")
}

func TestApplyRoster(t *testing.T) {
	entries, err := parseRoster(strings.NewReader(testRoster))
	require.NoError(t, err)

	table := feetable.New([]fee.RegionRates{{Region: "Region 3", FIGFee: 12, NationalFee: 9, CompulsoryFee: 5}})
	store := roster.New(fee.DefaultOptions(), roster.WithLookup(table))

	warnings, err := applyRoster(store, roster.SeedDefault, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{`judge 2: unknown field "shoeSize"`}, warnings)

	_, results := store.Results()
	require.Len(t, results, 2)
	assert.InDelta(t, 85.0, results[0].Total, 1e-9)
	assert.Equal(t, fee.LevelNational, results[1].Level)
	assert.Equal(t, 9.0, results[1].NationalFee, "rate comes from the fee table")
	assert.InDelta(t, 27.0, results[1].Total, 1e-9)
	assert.True(t, results[1].RegionMatched)
}

func TestApplyRosterRateAfterRegion(t *testing.T) {
	entries, err := parseRoster(strings.NewReader("judges:\n  - figFee: 20\n    region: Region 3\n"))
	require.NoError(t, err)

	table := feetable.New([]fee.RegionRates{{Region: "Region 3", FIGFee: 12, NationalFee: 9, CompulsoryFee: 5}})
	store := roster.New(fee.DefaultOptions(), roster.WithLookup(table))
	_, err = applyRoster(store, roster.SeedDefault, entries)
	require.NoError(t, err)

	j := store.Snapshot().Judges[0]
	assert.Equal(t, 20.0, j.FIGFee, "explicit rate is applied after the region lookup")
	assert.Equal(t, 5.0, j.CompulsoryFee)
}

func TestApplyRosterDisabledFields(t *testing.T) {
	entries, err := parseRoster(strings.NewReader("judges:\n  - breakfastRate: 12\n    airfare: 300\n    breakfast: 14\n"))
	require.NoError(t, err)

	store := roster.New(fee.Options{MealSchema: fee.MealFlat})
	warnings, err := applyRoster(store, roster.SeedDefault, entries)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)

	_, results := store.Results()
	assert.Equal(t, 14.0, results[0].MealTotal)
	assert.Equal(t, 0.0, results[0].ExtraTotal)
}

func TestParseFormats(t *testing.T) {
	got, err := parseFormats([]string{"pdf,CSV", "csv", "none", "txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pdf", "csv", "txt"}, got)

	got, err = parseFormats([]string{"none"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseFormats([]string{"docx"})
	assert.Error(t, err)
}

func TestDefaultOutputs(t *testing.T) {
	got := defaultOutputs(filepath.Join("events", "state.yaml"), []string{"pdf", "xlsx"})
	assert.Equal(t, outputs{
		"pdf":  filepath.Join("events", "state.pdf"),
		"xlsx": filepath.Join("events", "state.xlsx"),
	}, got)
}

func TestCalcSingleFile(t *testing.T) {
	dir := t.TempDir()
	fees := writeFile(t, dir, "fees.csv", testFees)
	rosterPath := writeFile(t, dir, "roster.yaml", testRoster)

	stdout, stderr, err := runApp(t, "calc", "--format", "pdf,csv", "--fee-table", fees, rosterPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Total Pay: $85.00")
	assert.Contains(t, stdout, "Judge 2: Lee (National, Region 3)")
	assert.Contains(t, stderr, "roster.yaml: 2 judge(s), total $112.00 → roster.pdf, roster.csv")
	assert.Contains(t, stderr, `judge 2: unknown field "shoeSize"`)

	n, err := report.CountPagesFile(filepath.Join(dir, "roster.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	csvData, err := os.ReadFile(filepath.Join(dir, "roster.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "2,Lee,National,Region 3,3,0,27.00")
}

func TestCalcTextReport(t *testing.T) {
	dir := t.TempDir()
	fees := writeFile(t, dir, "fees.csv", testFees)
	rosterPath := writeFile(t, dir, "roster.yaml", testRoster)

	_, stderr, err := runApp(t, "calc", "--format", "txt", "--quiet", "--fee-table", fees, rosterPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "→ roster.txt")

	data, err := os.ReadFile(filepath.Join(dir, "roster.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Judge 1: Dana Reyes (FIG)")
	assert.Contains(t, string(data), "Total Pay: $85.00\n\nJudge 2: Lee (National, Region 3)")
	assert.Contains(t, string(data), "Total Pay: $27.00")
}

func TestCalcExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	rosterPath := writeFile(t, dir, "roster.yaml", testRoster)
	out := filepath.Join(dir, "out", "fees.xlsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))

	stdout, _, err := runApp(t, "calc", "--format", "none", "--xlsx", out, "--quiet", "--fee-table", "", rosterPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.FileExists(t, out)
	assert.NoFileExists(t, filepath.Join(dir, "roster.pdf"))
}

func TestCalcDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", testRoster)
	writeFile(t, dir, "bad.yml", "judges: [1, 2]\n")
	writeFile(t, dir, "notes.txt", "ignored")

	_, stderr, err := runApp(t, "calc", "--format", "csv", "--quiet", "--fee-table", "", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 roster files failed")
	assert.Contains(t, stderr, "bad.yml: error:")
	assert.Contains(t, stderr, "good.yaml: 2 judge(s)")
	assert.FileExists(t, filepath.Join(dir, "good.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.csv"))
}

func TestCalcEmptyDirectory(t *testing.T) {
	_, _, err := runApp(t, "calc", "--fee-table", "", t.TempDir())
	assert.ErrorContains(t, err, "no roster files found")
}

func TestCalcMissingArgument(t *testing.T) {
	_, _, err := runApp(t, "calc")
	assert.ErrorContains(t, err, "missing roster file")
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.pdf")
	o := report.DefaultOptions()
	o.Chart = false
	require.NoError(t, report.WritePDFFile(path, nil, o))

	stdout, stderr, err := runApp(t, "inspect", path, filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, stdout, path+": 1 page(s)")
	assert.Contains(t, stderr, "missing.pdf: error:")
}
