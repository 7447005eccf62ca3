package fee

import (
	"fmt"
	"strings"
)

// Level is a judge's certification tier. It decides which optional-routine
// rate applies.
type Level string

const (
	LevelFIG        Level = "FIG"
	LevelNational   Level = "National"
	LevelCompulsory Level = "Compulsory"
)

// Levels lists the certification tiers in display order.
var Levels = []Level{LevelFIG, LevelNational, LevelCompulsory}

// ParseLevel matches s against the known levels, ignoring case and
// surrounding space.
func ParseLevel(s string) (Level, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Levels {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

// JudgeInput holds everything a user can enter for one judge.
type JudgeInput struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Level  Level  `json:"level" yaml:"level"`
	Region string `json:"region" yaml:"region"`

	OptionalRoutines   int `json:"optionalRoutines" yaml:"optionalRoutines"`
	CompulsoryRoutines int `json:"compulsoryRoutines" yaml:"compulsoryRoutines"`

	FIGFee        float64 `json:"figFee" yaml:"figFee"`
	NationalFee   float64 `json:"nationalFee" yaml:"nationalFee"`
	CompulsoryFee float64 `json:"compulsoryFee" yaml:"compulsoryFee"`

	// Counts under the count-rate meal schema, dollar amounts under the flat
	// schema.
	Breakfast float64 `json:"breakfast" yaml:"breakfast"`
	Lunch     float64 `json:"lunch" yaml:"lunch"`
	Dinner    float64 `json:"dinner" yaml:"dinner"`

	BreakfastRate float64 `json:"breakfastRate" yaml:"breakfastRate"`
	LunchRate     float64 `json:"lunchRate" yaml:"lunchRate"`
	DinnerRate    float64 `json:"dinnerRate" yaml:"dinnerRate"`

	SessionRate float64 `json:"sessionRate" yaml:"sessionRate"`
	MeetRate    float64 `json:"meetRate" yaml:"meetRate"`

	Mileage     float64 `json:"mileage" yaml:"mileage"`
	MileageRate float64 `json:"mileageRate" yaml:"mileageRate"`

	Baggage   float64 `json:"baggage" yaml:"baggage"`
	Parking   float64 `json:"parking" yaml:"parking"`
	Airfare   float64 `json:"airfare" yaml:"airfare"`
	Rideshare float64 `json:"rideshare" yaml:"rideshare"`
}

// NewJudgeInput returns a default-valued record: no name, FIG level and every
// number zero.
func NewJudgeInput(id string) JudgeInput {
	return JudgeInput{ID: id, Level: LevelFIG}
}

// RegionRates is one row of a fee table: the standard routine rates for a
// region.
type RegionRates struct {
	Region        string  `json:"region"`
	FIGFee        float64 `json:"figFee"`
	NationalFee   float64 `json:"nationalFee"`
	CompulsoryFee float64 `json:"compulsoryFee"`
}

// RateLookup resolves a region to its fee table row.
type RateLookup interface {
	Lookup(region string) (RegionRates, bool)
}

// Result is the pay breakdown derived from one JudgeInput.
type Result struct {
	JudgeInput

	OptionalTotal   float64 `json:"optionalTotal"`
	CompulsoryTotal float64 `json:"compulsoryTotal"`
	MealTotal       float64 `json:"mealTotal"`
	MileageTotal    float64 `json:"mileageTotal"`
	ExtraTotal      float64 `json:"extraTotal"`
	Total           float64 `json:"total"`

	// RegionMatched reports whether Region names a row of the loaded fee
	// table.
	RegionMatched bool `json:"regionMatched"`
}

// FormatMoney renders v as a dollar amount with exactly two decimals.
func FormatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
