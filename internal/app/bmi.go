package app

import "math"

// BMICategory is one row of the WHO classification table.
type BMICategory struct {
	Name       string `json:"category"`
	Color      string `json:"colorToken"`
	RangeLabel string `json:"rangeLabel"`
}

// WHO international classification. Lower bounds are inclusive and the
// table has no gaps or overlaps.
var bmiCategories = []BMICategory{
	{Name: "underweight", Color: "#4A90E2", RangeLabel: "< 18.5"},
	{Name: "normal", Color: "#4ECDC4", RangeLabel: "18.5 - 24.9"},
	{Name: "overweight", Color: "#FFB74D", RangeLabel: "25 - 29.9"},
	{Name: "obese", Color: "#FF9B9B", RangeLabel: "30 - 34.9"},
	{Name: "severely_obese", Color: "#FF6B6B", RangeLabel: "≥ 35"},
}

var bmiBounds = []float64{18.5, 25, 30, 35}

// ComputeBMI returns weightKg / (heightCm/100)^2 at full precision.
// ok is false when either input is non-finite or non-positive.
func ComputeBMI(heightCm, weightKg float64) (bmi float64, ok bool) {
	if !finite(heightCm) || !finite(weightKg) || heightCm <= 0 || weightKg <= 0 {
		return 0, false
	}
	m := heightCm / 100
	return weightKg / (m * m), true
}

// RoundBMI rounds a BMI value to one decimal place for display.
// Category lookup uses the full-precision value.
func RoundBMI(bmi float64) float64 {
	return math.Round(bmi*10) / 10
}

// ClassifyBMI maps a BMI value to its WHO category.
func ClassifyBMI(bmi float64) BMICategory {
	for i, bound := range bmiBounds {
		if bmi < bound {
			return bmiCategories[i]
		}
	}
	return bmiCategories[len(bmiCategories)-1]
}

// BMICategories returns the full classification table in order.
func BMICategories() []BMICategory {
	out := make([]BMICategory, len(bmiCategories))
	copy(out, bmiCategories)
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
