package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zalepa/judgefee/fee"
)

func exampleResult(opts fee.Options) fee.Result {
	in := fee.NewJudgeInput("j1")
	in.Name = "Dana Reyes"
	in.OptionalRoutines = 4
	in.FIGFee = 10
	in.CompulsoryRoutines = 2
	in.CompulsoryFee = 5
	in.Mileage = 20
	in.MileageRate = 0.5
	in.MeetRate = 25
	return fee.Compute(in, nil, opts)
}

func TestBlockSuppressesZeroLines(t *testing.T) {
	o := DefaultOptions()
	got := Block(0, exampleResult(o.Fee), o)
	want := []string{
		"Judge 1: Dana Reyes (FIG)",
		"Optional Total: $40.00",
		"Compulsory Total: $10.00",
		"Head Judge: $25.00",
		"Miles Driven: 20 @ $0.50 = $10.00",
		"Total Pay: $85.00",
	}
	assert.Equal(t, want, got)
}

func TestBlockShowZeroLines(t *testing.T) {
	o := DefaultOptions()
	o.ShowZeroLines = true
	o.Fee.ExtraFees = false
	o.Fee.MealSchema = fee.MealFlat

	got := Block(0, exampleResult(o.Fee), o)
	want := []string{
		"Judge 1: Dana Reyes (FIG)",
		"Optional Total: $40.00",
		"Compulsory Total: $10.00",
		"Breakfast: $0.00",
		"Lunch: $0.00",
		"Dinner: $0.00",
		"Meal Penalties: $0.00",
		"Head Judge: $25.00",
		"Miles Driven: 20 @ $0.50 = $10.00",
		"Total Pay: $85.00",
	}
	assert.Equal(t, want, got)
}

func TestLinesMealsAndExtras(t *testing.T) {
	in := fee.NewJudgeInput("j")
	in.Breakfast, in.BreakfastRate = 2, 12.5
	in.Dinner, in.DinnerRate = 1, 30
	in.Airfare = 310.4

	o := DefaultOptions()
	r := fee.Compute(in, nil, o.Fee)
	var got []string
	for _, l := range Lines(r, o) {
		got = append(got, l.String())
	}
	assert.Equal(t, []string{
		"Breakfast: 2 @ $12.50 = $25.00",
		"Dinner: 1 @ $30.00 = $30.00",
		"Airfare: $310.40",
	}, got)

	o.Fee.ExtraFees = false
	for _, l := range Lines(fee.Compute(in, nil, o.Fee), o) {
		assert.NotEqual(t, "Airfare", l.Label)
	}
}

func TestHeadingRegion(t *testing.T) {
	r := exampleResult(fee.DefaultOptions())
	r.Region = "Region 3"
	r.Level = fee.LevelNational

	o := DefaultOptions()
	assert.Equal(t, "Judge 3: Dana Reyes (National, Region 3)", Heading(2, r, o))

	o.Fee.RegionLookup = false
	assert.Equal(t, "Judge 3: Dana Reyes (National)", Heading(2, r, o))
}

func TestText(t *testing.T) {
	o := DefaultOptions()
	r := exampleResult(o.Fee)
	got := Text([]fee.Result{r, r}, o)
	assert.Equal(t, 2, strings.Count(got, "Total Pay: $85.00"))
	assert.Contains(t, got, "Judge 2: Dana Reyes (FIG)")
	assert.Contains(t, got, "$85.00\n\nJudge 2")
}

func TestPaginate(t *testing.T) {
	assert.Equal(t, []page{{}}, paginate(nil))
	assert.Equal(t, []page{{0, 1, 2}}, paginate([]int{6, 6, 6}))

	pages := paginate(make40(6))
	require.Greater(t, len(pages), 1)
	seen := 0
	for _, pg := range pages {
		for _, idx := range pg {
			assert.Equal(t, seen, idx, "blocks stay in roster order")
			seen++
		}
	}
	assert.Equal(t, 40, seen)

	// An oversize block still lands somewhere.
	assert.Equal(t, []page{{0}, {1}}, paginate([]int{3, 200}))
}

func make40(lines int) []int {
	sizes := make([]int, 40)
	for i := range sizes {
		sizes[i] = lines
	}
	return sizes
}

func roster(n int, o Options) []fee.Result {
	results := make([]fee.Result, n)
	for i := range results {
		r := exampleResult(o.Fee)
		r.Name = fmt.Sprintf("Judge Name %d", i+1)
		results[i] = r
	}
	return results
}

func TestRenderPDFPageCount(t *testing.T) {
	tests := []struct {
		name   string
		judges int
		chart  bool
	}{
		{"empty", 0, true},
		{"single", 1, true},
		{"single no chart", 1, false},
		{"many", 40, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			o.Chart = tt.chart
			results := roster(tt.judges, o)

			var buf bytes.Buffer
			require.NoError(t, RenderPDF(&buf, results, o))
			require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

			got, err := CountPages(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, PageCount(results, o), got)
		})
	}
}

func TestRenderPDFNegativeTotal(t *testing.T) {
	o := DefaultOptions()
	o.Fee.SignedAdjustments = true
	in := fee.NewJudgeInput("j2")
	in.Name = "Refund"
	in.MeetRate = -50
	results := []fee.Result{exampleResult(o.Fee), fee.Compute(in, nil, o.Fee)}
	require.Less(t, results[1].Total, 0.0)

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, results, o))
	got, err := CountPages(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, PageCount(results, o), got)
}

func TestChartAxis(t *testing.T) {
	assert.True(t, nonNegative(nil))
	assert.True(t, nonNegative([]float64{0, 85}))
	assert.False(t, nonNegative([]float64{85, -50}))

	var negative int
	for _, tk := range (moneyTicks{}).Ticks(-50, 100) {
		switch {
		case tk.Label == "":
		case tk.Value < 0:
			negative++
			assert.Equal(t, fmt.Sprintf("-$%.0f", -tk.Value), tk.Label)
		default:
			assert.Equal(t, fmt.Sprintf("$%.0f", tk.Value), tk.Label)
		}
	}
	assert.Positive(t, negative, "range below zero gets labeled ticks")
}

func TestWritePDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	o := DefaultOptions()
	require.NoError(t, WritePDFFile(path, roster(3, o), o))

	n, err := CountPagesFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one page of judges plus the chart")

	_, err = CountPagesFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteCSV(t *testing.T) {
	o := DefaultOptions()
	r := exampleResult(o.Fee)
	r.Region = "Region 3"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []fee.Result{r}, o))
	want := "Judge,Name,Level,Region,OptionalRoutines,CompulsoryRoutines,OptionalTotal,CompulsoryTotal,MealTotal,MealPenalties,HeadJudge,Mileage,MileageTotal,ExtraTotal,Total\n" +
		"1,Dana Reyes,FIG,Region 3,4,2,40.00,10.00,0.00,0.00,25.00,20,10.00,0.00,85.00\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVMinimalColumns(t *testing.T) {
	o := Options{Fee: fee.Options{MealSchema: fee.MealFlat}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, o))
	assert.Equal(t, "Judge,Name,Level,OptionalRoutines,CompulsoryRoutines,OptionalTotal,CompulsoryTotal,MealTotal,MealPenalties,HeadJudge,Mileage,MileageTotal,Total\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	o := DefaultOptions()
	results := roster(2, o)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, results, o))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4, "header, two judges, total")
	assert.Equal(t, "Judge", rows[0][0])
	assert.Equal(t, "Judge Name 2", rows[2][1])
	assert.Equal(t, "Total", rows[3][0])

	cols := columns(o)
	totalCol, _ := excelize.ColumnNumberToName(len(cols) + 1)
	formula, err := f.GetCellFormula(sheetName, totalCol+"4")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SUM(%s2:%s3)", totalCol, totalCol), formula)
}

func TestRenderTerminal(t *testing.T) {
	o := DefaultOptions()
	var buf bytes.Buffer
	require.NoError(t, RenderTerminal(&buf, roster(2, o), o))

	out := buf.String()
	assert.Contains(t, out, DefaultTitle)
	assert.Contains(t, out, "Judge 1: Judge Name 1 (FIG)")
	assert.Contains(t, out, "Miles Driven: 20 @ $0.50 = $10.00")
	assert.Equal(t, 2, strings.Count(out, "Total Pay: $85.00"))
	assert.Contains(t, out, "2 judge(s), grand total $170.00")
	assert.NotContains(t, out, "\x1b[", "no color codes when writing to a buffer")
}
