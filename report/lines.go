// Package report renders fee results as line-item summaries: a paginated
// PDF, CSV and XLSX exports and terminal cards.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zalepa/judgefee/fee"
)

const (
	DefaultTitle    = "Gymnastics Judge Fee Summary"
	DefaultFileName = "judging_fees.pdf"
)

// Options controls what a report shows.
type Options struct {
	Title string
	// ShowZeroLines keeps line items whose amount is zero.
	ShowZeroLines bool
	// Chart appends a total-pay bar chart page to PDF reports.
	Chart bool
	Fee   fee.Options
}

// DefaultOptions suppresses zero lines and includes the chart.
func DefaultOptions() Options {
	return Options{Title: DefaultTitle, Chart: true, Fee: fee.DefaultOptions()}
}

func (o Options) title() string {
	if o.Title == "" {
		return DefaultTitle
	}
	return o.Title
}

// Line is one line item of a judge's summary.
type Line struct {
	Label  string
	Detail string // "n @ $rate = " prefix for count times rate items
	Amount float64
}

func (l Line) String() string {
	return l.Label + ": " + l.Detail + fee.FormatMoney(l.Amount)
}

// Heading is the title line of a judge's block, numbered from 1.
func Heading(i int, r fee.Result, o Options) string {
	tag := string(r.Level)
	if o.Fee.RegionLookup && r.Region != "" {
		tag += ", " + r.Region
	}
	return fmt.Sprintf("Judge %d: %s (%s)", i+1, r.Name, tag)
}

// TotalLine is the closing line of a judge's block.
func TotalLine(r fee.Result) string {
	return "Total Pay: " + fee.FormatMoney(r.Total)
}

func quantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rated(n, rate float64) string {
	return quantity(n) + " @ " + fee.FormatMoney(rate) + " = "
}

// Lines lists the line items of r in report order. Zero amounts are dropped
// unless o.ShowZeroLines is set.
func Lines(r fee.Result, o Options) []Line {
	lines := []Line{
		{Label: "Optional Total", Amount: r.OptionalTotal},
		{Label: "Compulsory Total", Amount: r.CompulsoryTotal},
	}

	if o.Fee.MealSchema == fee.MealFlat {
		lines = append(lines,
			Line{Label: "Breakfast", Amount: r.Breakfast},
			Line{Label: "Lunch", Amount: r.Lunch},
			Line{Label: "Dinner", Amount: r.Dinner},
		)
	} else {
		lines = append(lines,
			Line{Label: "Breakfast", Detail: rated(r.Breakfast, r.BreakfastRate), Amount: r.Breakfast * r.BreakfastRate},
			Line{Label: "Lunch", Detail: rated(r.Lunch, r.LunchRate), Amount: r.Lunch * r.LunchRate},
			Line{Label: "Dinner", Detail: rated(r.Dinner, r.DinnerRate), Amount: r.Dinner * r.DinnerRate},
		)
	}

	lines = append(lines,
		Line{Label: "Meal Penalties", Amount: r.SessionRate},
		Line{Label: "Head Judge", Amount: r.MeetRate},
		Line{Label: "Miles Driven", Detail: rated(r.Mileage, r.MileageRate), Amount: r.MileageTotal},
	)

	if o.Fee.ExtraFees {
		lines = append(lines,
			Line{Label: "Baggage", Amount: r.Baggage},
			Line{Label: "Parking", Amount: r.Parking},
			Line{Label: "Airfare", Amount: r.Airfare},
			Line{Label: "Rideshare", Amount: r.Rideshare},
		)
	}

	if o.ShowZeroLines {
		return lines
	}
	kept := lines[:0]
	for _, l := range lines {
		if l.Amount != 0 {
			kept = append(kept, l)
		}
	}
	return kept
}

// Block is the full text of one judge's summary.
func Block(i int, r fee.Result, o Options) []string {
	lines := Lines(r, o)
	out := make([]string, 0, len(lines)+2)
	out = append(out, Heading(i, r, o))
	for _, l := range lines {
		out = append(out, l.String())
	}
	return append(out, TotalLine(r))
}

// Text renders all results as plain text blocks separated by blank lines.
func Text(results []fee.Result, o Options) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, line := range Block(i, r, o) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
