package feetable

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/zalepa/judgefee/fee"
	"github.com/zalepa/judgefee/roster"
)

const sampleCSV = `region,figFee,nationalFee,compulsoryFee
Region 1,15,11,6
Region 3,12,9,5
Region 4,$14.50,10.25,5.5
`

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	row, ok := table.Lookup("Region 3")
	require.True(t, ok)
	assert.Equal(t, fee.RegionRates{Region: "Region 3", FIGFee: 12, NationalFee: 9, CompulsoryFee: 5}, row)

	row, ok = table.Lookup("Region 4")
	require.True(t, ok)
	assert.Equal(t, 14.5, row.FIGFee)

	_, ok = table.Lookup("Region 9")
	assert.False(t, ok)
	_, ok = table.Lookup("region 3")
	assert.False(t, ok, "lookup is exact")
}

func TestParseHeaderVariants(t *testing.T) {
	data := "\ufeffCompulsoryFee, Region ,notes,NationalFee,FIGFee\n5,Region 3,host region,9,12\n\n"
	table, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []fee.RegionRates{{Region: "Region 3", FIGFee: 12, NationalFee: 9, CompulsoryFee: 5}}, table.Rows())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", "no header"},
		{"missing columns", "region,figFee\nRegion 1,10\n", "nationalfee, compulsoryfee"},
		{"bad number", "region,figFee,nationalFee,compulsoryFee\nRegion 1,ten,9,5\n", "row 2"},
		{"negative", "region,figFee,nationalFee,compulsoryFee\nRegion 1,10,-9,5\n", "negative"},
		{"nan", "region,figFee,nationalFee,compulsoryFee\nRegion 1,NaN,9,5\n", "not a number"},
		{"no region", "region,figFee,nationalFee,compulsoryFee\n,10,9,5\n", "empty region"},
		{"short row", "region,figFee,nationalFee,compulsoryFee\nRegion 1,10\n", "not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"region", "figFee", "nationalFee", "compulsoryFee"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Region 3", 12, 9, 5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Region 7", 13.5, 10, 6}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	row, ok := table.Lookup("Region 7")
	require.True(t, ok)
	assert.Equal(t, 13.5, row.FIGFee)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "fees.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0644))

	table, err := Load(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "fees.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte(sampleCSV), 0644))
	_, err = Load(bad)
	assert.Error(t, err, "csv bytes are not a workbook")
}

func TestRegions(t *testing.T) {
	table := New([]fee.RegionRates{{Region: "A"}, {Region: "B"}, {Region: "A"}})
	assert.Equal(t, []string{"A", "B"}, table.Regions())
}

func TestNilAndEmptyTable(t *testing.T) {
	var nilTable *Table
	_, ok := nilTable.Lookup("Region 3")
	assert.False(t, ok)
	assert.Zero(t, nilTable.Len())
	assert.Zero(t, Empty.Len())
}

func TestOpenDegradesOnFailure(t *testing.T) {
	p := Open(filepath.Join(t.TempDir(), "nope.csv"), zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	table := p.Wait(ctx)
	assert.Zero(t, table.Len())
	assert.Error(t, p.Err())
	_, ok := p.Lookup("Region 3")
	assert.False(t, ok)
}

func TestOpenLoadsInBackground(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	p := Open(path, zap.NewNop())
	select {
	case <-p.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("fee table never finished loading")
	}
	require.NoError(t, p.Err())
	row, ok := p.Lookup("Region 3")
	require.True(t, ok)
	assert.Equal(t, 12.0, row.FIGFee)
}

func TestOpenEmptyPath(t *testing.T) {
	p := Open("", zap.NewNop())
	select {
	case <-p.Ready():
	default:
		t.Fatal("empty path should be ready immediately")
	}
	assert.Zero(t, p.Table().Len())
	assert.NoError(t, p.Err())
}

func TestRegionEditBeforeLoadCompletes(t *testing.T) {
	release := make(chan struct{})
	loaded := New([]fee.RegionRates{{Region: "Region 3", FIGFee: 12, NationalFee: 9, CompulsoryFee: 5}})
	p := open("fees.csv", func(string) (*Table, error) {
		<-release
		return loaded, nil
	}, zap.NewNop())

	store := roster.New(fee.DefaultOptions(), roster.WithLookup(p))
	require.NoError(t, store.Edit(0, roster.FieldRegion, "Region 3"))

	j := store.Snapshot().Judges[0]
	assert.Equal(t, "Region 3", j.Region)
	assert.Zero(t, j.FIGFee, "no row is visible while loading")
	assert.Zero(t, j.NationalFee)
	assert.Zero(t, j.CompulsoryFee)
	_, results := store.Results()
	assert.False(t, results[0].RegionMatched)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.Equal(t, 1, p.Wait(ctx).Len())

	j = store.Snapshot().Judges[0]
	assert.Zero(t, j.FIGFee, "finishing the load does not rewrite earlier edits")

	require.NoError(t, store.Edit(0, roster.FieldRegion, "Region 3"))
	j = store.Snapshot().Judges[0]
	assert.Equal(t, 12.0, j.FIGFee)
	assert.Equal(t, 9.0, j.NationalFee)
	assert.Equal(t, 5.0, j.CompulsoryFee)
}
