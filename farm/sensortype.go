package farm

import "strings"

// Canonical sensor types. Raw device type labels are normalized onto this
// set; labels that match no rule pass through lower-cased.
const (
	SensorTemperature = "temperature"
	SensorWaterTemp   = "water_temp"
	SensorHumidity    = "humidity"
	SensorCO2         = "co2"
	SensorPH          = "ph"
	SensorEC          = "ec"
	SensorLight       = "light"
	SensorWaterLevel  = "water_level"
)

// NormalizeSensorType maps a raw device type label to its canonical sensor
// type. Matching is case-insensitive and ordered: the more specific rules
// must run first, otherwise "water_temperature" would classify as plain
// temperature. The function is total and idempotent; unknown labels are
// returned lower-cased instead of raising an error.
func NormalizeSensorType(dtype string) string {
	t := strings.ToLower(dtype)

	switch {
	case strings.Contains(t, "water_temp") || t == "water_temperature":
		return SensorWaterTemp
	case strings.Contains(t, "air_temp") || t == "tmp" || t == "온도" || t == "temperature":
		return SensorTemperature
	case strings.Contains(t, "temp"):
		return SensorTemperature
	case strings.Contains(t, "humid") || t == "hum" || t == "습도":
		return SensorHumidity
	case strings.Contains(t, "co2") || t == "carbon":
		return SensorCO2
	case strings.Contains(t, "ph"):
		return SensorPH
	case strings.Contains(t, "ec") || strings.Contains(t, "conductivity"):
		return SensorEC
	case strings.Contains(t, "light") || strings.Contains(t, "lux") || t == "조도":
		return SensorLight
	case strings.Contains(t, "level") || t == "수위":
		return SensorWaterLevel
	}
	return t
}
