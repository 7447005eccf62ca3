package fee

import (
	"fmt"
	"strings"
)

// MealSchema selects how meal reimbursement is computed.
type MealSchema string

const (
	// MealFlat sums the breakfast, lunch and dinner amounts as entered.
	MealFlat MealSchema = "flat"
	// MealCountRate multiplies each meal count by its per-meal rate.
	MealCountRate MealSchema = "count-rate"
)

// ParseMealSchema validates a configured meal schema name.
func ParseMealSchema(s string) (MealSchema, error) {
	switch MealSchema(strings.ToLower(strings.TrimSpace(s))) {
	case MealFlat:
		return MealFlat, nil
	case MealCountRate, "":
		return MealCountRate, nil
	}
	return "", fmt.Errorf("unknown meal schema %q (want %q or %q)", s, MealFlat, MealCountRate)
}

// Options switches the optional parts of the fee model on and off.
type Options struct {
	MealSchema   MealSchema
	RegionLookup bool
	ExtraFees    bool
	// SignedAdjustments lets sessionRate and meetRate go below zero.
	SignedAdjustments bool
}

// DefaultOptions is the richest configuration: per-meal rates, region
// lookup and travel extras.
func DefaultOptions() Options {
	return Options{
		MealSchema:   MealCountRate,
		RegionLookup: true,
		ExtraFees:    true,
	}
}

// Compute derives the pay breakdown for one judge. When row is non-nil its
// routine rates are used in place of the ones on the input. Compute never
// validates ranges.
func Compute(in JudgeInput, row *RegionRates, opts Options) Result {
	figFee, nationalFee, compulsoryFee := in.FIGFee, in.NationalFee, in.CompulsoryFee
	if row != nil {
		figFee, nationalFee, compulsoryFee = row.FIGFee, row.NationalFee, row.CompulsoryFee
	}

	r := Result{JudgeInput: in}

	switch in.Level {
	case LevelFIG:
		r.OptionalTotal = float64(in.OptionalRoutines) * figFee
	case LevelNational:
		r.OptionalTotal = float64(in.OptionalRoutines) * nationalFee
	default:
		r.OptionalTotal = 0
	}
	r.CompulsoryTotal = float64(in.CompulsoryRoutines) * compulsoryFee

	if opts.MealSchema == MealFlat {
		r.MealTotal = in.Breakfast + in.Lunch + in.Dinner
	} else {
		r.MealTotal = in.Breakfast*in.BreakfastRate + in.Lunch*in.LunchRate + in.Dinner*in.DinnerRate
	}

	r.MileageTotal = in.Mileage * in.MileageRate

	if opts.ExtraFees {
		r.ExtraTotal = in.Baggage + in.Parking + in.Airfare + in.Rideshare
	}

	r.Total = r.OptionalTotal + r.CompulsoryTotal + r.MealTotal + r.MileageTotal + r.ExtraTotal +
		in.SessionRate + in.MeetRate
	return r
}

// Project recomputes the result for every judge, in order. With region
// lookup enabled each judge is joined with its fee table row so the result
// can report whether the region matched. Rates are taken from the judge, not
// the row: the row was copied onto the judge when the region was selected.
func Project(judges []JudgeInput, lookup RateLookup, opts Options) []Result {
	results := make([]Result, len(judges))
	for i, j := range judges {
		results[i] = Compute(j, nil, opts)
		if opts.RegionLookup && lookup != nil && j.Region != "" {
			_, results[i].RegionMatched = lookup.Lookup(j.Region)
		}
	}
	return results
}

// Sum adds up the totals of results.
func Sum(results []Result) float64 {
	var total float64
	for _, r := range results {
		total += r.Total
	}
	return total
}
