package web

import (
	"slices"
	"strconv"

	"github.com/zalepa/judgefee/fee"
	"github.com/zalepa/judgefee/report"
	"github.com/zalepa/judgefee/roster"
)

type pageData struct {
	Title      string
	Version    uint64
	Cards      []card
	GrandTotal string
	Count      int
	Regions    bool
}

type card struct {
	Index    int
	Anchor   string
	Heading  string
	Sections []section
	Lines    []string
	Total    string
	// RegionMiss is set when a region is entered that the fee table does not
	// know.
	RegionMiss bool
}

type section struct {
	Name   string
	Inputs []input
}

type input struct {
	Key     string
	Label   string
	Value   string
	Type    string // text, number or select
	Step    string
	Min     string
	Options []option
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

// visible reports whether f gets an input on a judge's card. Only the
// optional fee matching the judge's level is shown.
func visible(f roster.Field, j fee.JudgeInput, opts fee.Options) bool {
	if !f.Enabled(opts) {
		return false
	}
	switch f {
	case roster.FieldFIGFee:
		return j.Level == fee.LevelFIG
	case roster.FieldNationalFee:
		return j.Level == fee.LevelNational
	}
	return true
}

func buildInput(f roster.Field, j fee.JudgeInput, opts fee.Options, regions []string) input {
	in := input{Key: f.Key(), Label: f.Label(), Value: f.Value(j)}
	switch {
	case f == roster.FieldLevel:
		in.Type = "select"
		for _, l := range fee.Levels {
			in.Options = append(in.Options, option{Value: string(l), Label: string(l), Selected: l == j.Level})
		}
	case f == roster.FieldRegion && len(regions) > 0:
		in.Type = "select"
		in.Options = append(in.Options, option{Value: "", Label: "(none)", Selected: j.Region == ""})
		for _, r := range regions {
			in.Options = append(in.Options, option{Value: r, Label: r, Selected: r == j.Region})
		}
		if j.Region != "" && !slices.Contains(regions, j.Region) {
			in.Options = append(in.Options, option{Value: j.Region, Label: j.Region, Selected: true})
		}
	case !f.Numeric():
		in.Type = "text"
	case f.Kind() == roster.KindCount:
		in.Type = "number"
		in.Step = "1"
	default:
		// Rates such as 0.655 per mile carry more than two decimals.
		in.Type = "number"
		in.Step = "any"
	}
	if in.Type == "number" && !(f.Kind() == roster.KindAdjustment && opts.SignedAdjustments) {
		in.Min = "0"
	}
	return in
}

func buildCard(i int, r fee.Result, o report.Options, regions []string) card {
	c := card{
		Index:   i,
		Anchor:  "judge-" + strconv.Itoa(i+1),
		Heading: report.Heading(i, r, o),
		Total:   report.TotalLine(r),
	}
	c.RegionMiss = o.Fee.RegionLookup && r.Region != "" && !r.RegionMatched

	bySection := make(map[roster.Section][]input)
	for _, f := range roster.Fields(o.Fee) {
		if visible(f, r.JudgeInput, o.Fee) {
			bySection[f.Section()] = append(bySection[f.Section()], buildInput(f, r.JudgeInput, o.Fee, regions))
		}
	}
	for _, name := range roster.Sections {
		if inputs := bySection[name]; len(inputs) > 0 {
			c.Sections = append(c.Sections, section{Name: string(name), Inputs: inputs})
		}
	}

	for _, l := range report.Lines(r, o) {
		c.Lines = append(c.Lines, l.String())
	}
	return c
}

func buildPage(version uint64, results []fee.Result, o report.Options, regions []string) pageData {
	p := pageData{
		Title:      o.Title,
		Version:    version,
		Count:      len(results),
		GrandTotal: fee.FormatMoney(fee.Sum(results)),
		Regions:    len(regions) > 0,
	}
	if p.Title == "" {
		p.Title = report.DefaultTitle
	}
	for i, r := range results {
		p.Cards = append(p.Cards, buildCard(i, r, o, regions))
	}
	return p
}

// changedFields lists, in field order, the visible fields whose submitted
// value differs from the stored one. Unchanged inputs are skipped so that a
// region lookup in the same submission is not undone by the stale rate
// values still on the form.
func changedFields(form map[string][]string, j fee.JudgeInput, opts fee.Options) []fieldEdit {
	var edits []fieldEdit
	for _, f := range roster.Fields(opts) {
		vals, ok := form[f.Key()]
		if !ok || len(vals) == 0 {
			continue
		}
		if vals[0] == f.Value(j) {
			continue
		}
		edits = append(edits, fieldEdit{field: f, raw: vals[0]})
	}
	return edits
}

type fieldEdit struct {
	field roster.Field
	raw   string
}
