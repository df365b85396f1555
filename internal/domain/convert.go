package domain

const kgToLb = 2.2046226218

// Measurement systems selectable in settings.
const (
	MeasurementMetric   = "metric"
	MeasurementImperial = "imperial"
)

// ConvertWeight converts a weight value between "kg" and "lb".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v float64, from, to string) float64 {
	if from == to {
		return v
	}
	if from == "kg" && to == "lb" {
		return v * kgToLb
	}
	if from == "lb" && to == "kg" {
		return v / kgToLb
	}
	return v
}

// UnitForMeasurement maps a measurement system to its weight unit.
// Weights are stored in kg; imperial is a display-time conversion.
func UnitForMeasurement(system string) string {
	if system == MeasurementImperial {
		return "lb"
	}
	return "kg"
}
