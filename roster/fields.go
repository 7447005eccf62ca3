package roster

import (
	"math"
	"strconv"
	"strings"

	"github.com/zalepa/judgefee/fee"
)

// Field identifies one editable property of a judge record.
type Field int

const (
	FieldName Field = iota
	FieldLevel
	FieldRegion
	FieldOptionalRoutines
	FieldCompulsoryRoutines
	FieldFIGFee
	FieldNationalFee
	FieldCompulsoryFee
	FieldBreakfast
	FieldLunch
	FieldDinner
	FieldBreakfastRate
	FieldLunchRate
	FieldDinnerRate
	FieldSessionRate
	FieldMeetRate
	FieldMileage
	FieldMileageRate
	FieldBaggage
	FieldParking
	FieldAirfare
	FieldRideshare

	numFields
)

// Kind is how a field's raw text is parsed.
type Kind int

const (
	KindText Kind = iota
	KindLevel
	// KindCount is a whole, non-negative number.
	KindCount
	// KindAmount is a non-negative decimal.
	KindAmount
	// KindAdjustment is a decimal that is clamped to zero unless signed
	// adjustments are enabled.
	KindAdjustment
)

// Section groups fields on the form and in the field listing.
type Section string

const (
	SectionIdentity Section = "Identity"
	SectionRoutines Section = "Routine Counts"
	SectionRates    Section = "Per Routine Fees"
	SectionMeals    Section = "Meal Reimbursements"
	SectionFlat     Section = "Other Flat Rates"
	SectionTravel   Section = "Travel"
)

// Sections lists the form sections in display order.
var Sections = []Section{SectionIdentity, SectionRoutines, SectionRates, SectionMeals, SectionFlat, SectionTravel}

type fieldSpec struct {
	key     string
	label   string
	kind    Kind
	section Section
	get     func(*fee.JudgeInput) string
	setText func(*fee.JudgeInput, string)
	setNum  func(*fee.JudgeInput, float64)
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var specs = [numFields]fieldSpec{
	FieldName: {"name", "Judge Name", KindText, SectionIdentity,
		func(j *fee.JudgeInput) string { return j.Name },
		func(j *fee.JudgeInput, s string) { j.Name = s }, nil},
	FieldLevel: {"level", "Certification Level", KindLevel, SectionIdentity,
		func(j *fee.JudgeInput) string { return string(j.Level) },
		func(j *fee.JudgeInput, s string) { j.Level = fee.Level(s) }, nil},
	FieldRegion: {"region", "Region", KindText, SectionIdentity,
		func(j *fee.JudgeInput) string { return j.Region },
		func(j *fee.JudgeInput, s string) { j.Region = s }, nil},
	FieldOptionalRoutines: {"optionalRoutines", "Optional Routines", KindCount, SectionRoutines,
		func(j *fee.JudgeInput) string { return strconv.Itoa(j.OptionalRoutines) },
		nil, func(j *fee.JudgeInput, v float64) { j.OptionalRoutines = int(v) }},
	FieldCompulsoryRoutines: {"compulsoryRoutines", "Compulsory Routines", KindCount, SectionRoutines,
		func(j *fee.JudgeInput) string { return strconv.Itoa(j.CompulsoryRoutines) },
		nil, func(j *fee.JudgeInput, v float64) { j.CompulsoryRoutines = int(v) }},
	FieldFIGFee: {"figFee", "FIG Optional Fee", KindAmount, SectionRates,
		func(j *fee.JudgeInput) string { return num(j.FIGFee) },
		nil, func(j *fee.JudgeInput, v float64) { j.FIGFee = v }},
	FieldNationalFee: {"nationalFee", "National Optional Fee", KindAmount, SectionRates,
		func(j *fee.JudgeInput) string { return num(j.NationalFee) },
		nil, func(j *fee.JudgeInput, v float64) { j.NationalFee = v }},
	FieldCompulsoryFee: {"compulsoryFee", "Compulsory Fee", KindAmount, SectionRates,
		func(j *fee.JudgeInput) string { return num(j.CompulsoryFee) },
		nil, func(j *fee.JudgeInput, v float64) { j.CompulsoryFee = v }},
	FieldBreakfast: {"breakfast", "Breakfast", KindAmount, SectionMeals,
		func(j *fee.JudgeInput) string { return num(j.Breakfast) },
		nil, func(j *fee.JudgeInput, v float64) { j.Breakfast = v }},
	FieldLunch: {"lunch", "Lunch", KindAmount, SectionMeals,
		func(j *fee.JudgeInput) string { return num(j.Lunch) },
		nil, func(j *fee.JudgeInput, v float64) { j.Lunch = v }},
	FieldDinner: {"dinner", "Dinner", KindAmount, SectionMeals,
		func(j *fee.JudgeInput) string { return num(j.Dinner) },
		nil, func(j *fee.JudgeInput, v float64) { j.Dinner = v }},
	FieldBreakfastRate: {"breakfastRate", "Breakfast Rate", KindAmount, SectionMeals,
		func(j *fee.JudgeInput) string { return num(j.BreakfastRate) },
		nil, func(j *fee.JudgeInput, v float64) { j.BreakfastRate = v }},
	FieldLunchRate: {"lunchRate", "Lunch Rate", KindAmount, SectionMeals,
		func(j *fee.JudgeInput) string { return num(j.LunchRate) },
		nil, func(j *fee.JudgeInput, v float64) { j.LunchRate = v }},
	FieldDinnerRate: {"dinnerRate", "Dinner Rate", KindAmount, SectionMeals,
		func(j *fee.JudgeInput) string { return num(j.DinnerRate) },
		nil, func(j *fee.JudgeInput, v float64) { j.DinnerRate = v }},
	FieldSessionRate: {"sessionRate", "Meal Penalties", KindAdjustment, SectionFlat,
		func(j *fee.JudgeInput) string { return num(j.SessionRate) },
		nil, func(j *fee.JudgeInput, v float64) { j.SessionRate = v }},
	FieldMeetRate: {"meetRate", "Head Judge", KindAdjustment, SectionFlat,
		func(j *fee.JudgeInput) string { return num(j.MeetRate) },
		nil, func(j *fee.JudgeInput, v float64) { j.MeetRate = v }},
	FieldMileage: {"mileage", "Miles Driven", KindAmount, SectionFlat,
		func(j *fee.JudgeInput) string { return num(j.Mileage) },
		nil, func(j *fee.JudgeInput, v float64) { j.Mileage = v }},
	FieldMileageRate: {"mileageRate", "Mileage Rate", KindAmount, SectionFlat,
		func(j *fee.JudgeInput) string { return num(j.MileageRate) },
		nil, func(j *fee.JudgeInput, v float64) { j.MileageRate = v }},
	FieldBaggage: {"baggage", "Baggage", KindAmount, SectionTravel,
		func(j *fee.JudgeInput) string { return num(j.Baggage) },
		nil, func(j *fee.JudgeInput, v float64) { j.Baggage = v }},
	FieldParking: {"parking", "Parking", KindAmount, SectionTravel,
		func(j *fee.JudgeInput) string { return num(j.Parking) },
		nil, func(j *fee.JudgeInput, v float64) { j.Parking = v }},
	FieldAirfare: {"airfare", "Airfare", KindAmount, SectionTravel,
		func(j *fee.JudgeInput) string { return num(j.Airfare) },
		nil, func(j *fee.JudgeInput, v float64) { j.Airfare = v }},
	FieldRideshare: {"rideshare", "Rideshare", KindAmount, SectionTravel,
		func(j *fee.JudgeInput) string { return num(j.Rideshare) },
		nil, func(j *fee.JudgeInput, v float64) { j.Rideshare = v }},
}

var byKey = func() map[string]Field {
	m := make(map[string]Field, numFields)
	for f := Field(0); f < numFields; f++ {
		m[strings.ToLower(specs[f].key)] = f
	}
	return m
}()

// ParseField looks up a field by its form key, ignoring case.
func ParseField(key string) (Field, bool) {
	f, ok := byKey[strings.ToLower(strings.TrimSpace(key))]
	return f, ok
}

// AllFields lists every field in declaration order.
func AllFields() []Field {
	fields := make([]Field, numFields)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// Fields lists the fields that exist under opts, in declaration order.
func Fields(opts fee.Options) []Field {
	var fields []Field
	for f := Field(0); f < numFields; f++ {
		if f.Enabled(opts) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Enabled reports whether f is part of the record under opts.
func (f Field) Enabled(opts fee.Options) bool {
	switch f {
	case FieldRegion:
		return opts.RegionLookup
	case FieldBreakfastRate, FieldLunchRate, FieldDinnerRate:
		return opts.MealSchema != fee.MealFlat
	case FieldBaggage, FieldParking, FieldAirfare, FieldRideshare:
		return opts.ExtraFees
	}
	return f >= 0 && f < numFields
}

func (f Field) valid() bool { return f >= 0 && f < numFields }

func (f Field) String() string {
	if !f.valid() {
		return "Field(" + strconv.Itoa(int(f)) + ")"
	}
	return specs[f].key
}

// Key is the form and API name of the field.
func (f Field) Key() string { return f.String() }

func (f Field) Label() string { return specs[f].label }

func (f Field) Kind() Kind { return specs[f].kind }

func (f Field) Section() Section { return specs[f].section }

// Numeric reports whether the field holds a number.
func (f Field) Numeric() bool { return specs[f].setNum != nil }

// Value renders the field's current value the way the form shows it.
func (f Field) Value(j fee.JudgeInput) string {
	return specs[f].get(&j)
}

// parseNumber reads a decimal, degrading anything unparsable (or not finite)
// to zero.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseValue converts raw into the value stored for f. Clamping applies to
// every numeric kind except signed adjustments.
func parseValue(f Field, raw string, signed bool) float64 {
	v := parseNumber(raw)
	switch specs[f].kind {
	case KindCount:
		v = math.Trunc(v)
		if v > math.MaxInt32 {
			v = math.MaxInt32
		}
	case KindAdjustment:
		if signed {
			return v
		}
	}
	return math.Max(0, v)
}
