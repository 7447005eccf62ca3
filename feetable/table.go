// Package feetable loads the region fee table: standard routine rates keyed
// by region name.
package feetable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zalepa/judgefee/fee"
)

// Required header columns, matched case-insensitively.
const (
	colRegion        = "region"
	colFIGFee        = "figfee"
	colNationalFee   = "nationalfee"
	colCompulsoryFee = "compulsoryfee"
)

var requiredColumns = []string{colRegion, colFIGFee, colNationalFee, colCompulsoryFee}

// ErrNoHeader is returned for an empty resource.
var ErrNoHeader = errors.New("fee table has no header row")

// Table is an immutable, ordered list of region rates.
type Table struct {
	rows  []fee.RegionRates
	lines []int // source line of each row
}

// Empty is the table used when no fee table could be loaded.
var Empty = &Table{}

// New builds a table from rows, keeping their order. Row i is reported as
// line i+1.
func New(rows []fee.RegionRates) *Table {
	t := &Table{rows: append([]fee.RegionRates(nil), rows...)}
	for i := range rows {
		t.lines = append(t.lines, i+1)
	}
	return t
}

// Rows returns a copy of the table rows in file order.
func (t *Table) Rows() []fee.RegionRates {
	if t == nil {
		return nil
	}
	return append([]fee.RegionRates(nil), t.rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Regions lists every distinct region in file order.
func (t *Table) Regions() []string {
	seen := make(map[string]bool)
	var regions []string
	for _, r := range t.Rows() {
		if !seen[r.Region] {
			seen[r.Region] = true
			regions = append(regions, r.Region)
		}
	}
	return regions
}

// Lookup returns the first row whose region equals region exactly.
func (t *Table) Lookup(region string) (fee.RegionRates, bool) {
	if t == nil {
		return fee.RegionRates{}, false
	}
	for _, r := range t.rows {
		if r.Region == region {
			return r, true
		}
	}
	return fee.RegionRates{}, false
}

// Load reads a fee table file. Files ending in .xlsx are read as
// spreadsheets, anything else as CSV.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fee table: %w", err)
	}
	defer f.Close()

	var t *Table
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		t, err = ParseXLSX(f)
	} else {
		t, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// record is one input row and the file line it started on.
type record struct {
	line   int
	fields []string
}

// Parse reads a CSV fee table with a header row.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, record{line: line, fields: fields})
	}
	return fromRecords(records)
}

// ParseXLSX reads the first sheet of a spreadsheet fee table.
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	records := make([]record, len(rows))
	for i, fields := range rows {
		records[i] = record{line: i + 1, fields: fields}
	}
	return fromRecords(records)
}

func fromRecords(records []record) (*Table, error) {
	// Skip leading blank lines.
	for len(records) > 0 && blank(records[0].fields) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	idx, err := headerIndex(records[0].fields)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for _, rec := range records[1:] {
		if blank(rec.fields) {
			continue
		}
		row, err := parseRow(rec.fields, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rec.line, err)
		}
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, rec.line)
	}
	return t, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(requiredColumns))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header missing column(s): %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(rec []string, idx map[string]int) (fee.RegionRates, error) {
	cell := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	row := fee.RegionRates{Region: cell(colRegion)}
	if row.Region == "" {
		return row, errors.New("empty region")
	}
	for _, c := range []struct {
		col string
		dst *float64
	}{
		{colFIGFee, &row.FIGFee},
		{colNationalFee, &row.NationalFee},
		{colCompulsoryFee, &row.CompulsoryFee},
	} {
		s := strings.TrimPrefix(cell(c.col), "$")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return row, fmt.Errorf("%s %q is not a number", c.col, cell(c.col))
		}
		if v < 0 {
			return row, fmt.Errorf("%s %q is negative", c.col, cell(c.col))
		}
		*c.dst = v
	}
	return row, nil
}

func blank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
