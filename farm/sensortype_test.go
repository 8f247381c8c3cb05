package farm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeSensorType verifies the rule table against labels observed in
// the field.
func TestNormalizeSensorType(t *testing.T) {
	cases := map[string]string{
		"temperature":       SensorTemperature,
		"AIR_TEMP_01":       SensorTemperature,
		"tmp":               SensorTemperature,
		"inner_temp":        SensorTemperature,
		"water_temperature": SensorWaterTemp,
		"WATER_TEMP":        SensorWaterTemp,
		"humidity":          SensorHumidity,
		"hum":               SensorHumidity,
		"co2":               SensorCO2,
		"carbon":            SensorCO2,
		"pH":                SensorPH,
		"EC":                SensorEC,
		"conductivity_1":    SensorEC,
		"light":             SensorLight,
		"lux_sensor":        SensorLight,
		"water_level":       SensorWaterLevel,
		"LEVEL2":            SensorWaterLevel,
		"xyz":               "xyz",
		"UNKNOWN":           "unknown",
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeSensorType(raw), "label %q", raw)
	}
}

// TestNormalizeSensorTypePriority pins the rule order: the specific
// water_temp rule must win over the generic temp rule.
func TestNormalizeSensorTypePriority(t *testing.T) {
	if got := NormalizeSensorType("water_temperature"); got != SensorWaterTemp {
		t.Fatalf("expected %q, got %q", SensorWaterTemp, got)
	}
	if got := NormalizeSensorType("water_temp_02"); got != SensorWaterTemp {
		t.Fatalf("expected %q, got %q", SensorWaterTemp, got)
	}
}

// TestNormalizeSensorTypeIdempotent verifies normalize(normalize(x)) ==
// normalize(x) for every canonical output and for passthrough labels.
func TestNormalizeSensorTypeIdempotent(t *testing.T) {
	labels := []string{
		SensorTemperature, SensorWaterTemp, SensorHumidity, SensorCO2,
		SensorPH, SensorEC, SensorLight, SensorWaterLevel,
		"air_temp", "WATER_TEMPERATURE", "lux", "some_custom_probe", "xyz",
	}
	for _, raw := range labels {
		once := NormalizeSensorType(raw)
		assert.Equal(t, once, NormalizeSensorType(once), "label %q", raw)
	}
}
