package feetable

import (
	"fmt"
	"sort"
	"strings"
)

// Duplicate describes a region that appears on more than one row. Lookups
// always return the first row.
type Duplicate struct {
	Region string
	Rows   []int // source line numbers, canonical row first
	// Conflicting is true when the repeated rows disagree on any rate.
	Conflicting bool
}

func (d Duplicate) String() string {
	rows := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = fmt.Sprint(r)
	}
	s := fmt.Sprintf("%q on rows %s (row %d wins)", d.Region, strings.Join(rows, ", "), d.Rows[0])
	if d.Conflicting {
		s += ", rates differ"
	}
	return s
}

// Duplicates reports every region listed more than once, ordered by the
// region's first appearance.
func (t *Table) Duplicates() []Duplicate {
	rows := t.Rows()
	seen := make(map[string][]int)
	for i, r := range rows {
		seen[r.Region] = append(seen[r.Region], i)
	}

	var dups []Duplicate
	for region, idxs := range seen {
		if len(idxs) < 2 {
			continue
		}
		d := Duplicate{Region: region}
		first := rows[idxs[0]]
		for _, i := range idxs {
			d.Rows = append(d.Rows, t.lines[i])
			r := rows[i]
			if r.FIGFee != first.FIGFee || r.NationalFee != first.NationalFee || r.CompulsoryFee != first.CompulsoryFee {
				d.Conflicting = true
			}
		}
		dups = append(dups, d)
	}

	sort.Slice(dups, func(i, j int) bool {
		return dups[i].Rows[0] < dups[j].Rows[0]
	})
	return dups
}
