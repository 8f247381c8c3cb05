package farm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	data := []byte(`{
		"display_names": { "temperature": "Air Temperature" },
		"thresholds": {
			"temperature": { "min": 15, "max": 30 },
			"ph": { "min": 5.5, "max": 7.0 }
		}
	}`)
	profile, err := ParseProfile(data)
	require.NoError(t, err)

	assert.Equal(t, "Air Temperature", profile.DisplayName(SensorTemperature))
	assert.Equal(t, "humidity", profile.DisplayName(SensorHumidity))

	assert.False(t, profile.Exceeded(SensorTemperature, 22.5))
	assert.True(t, profile.Exceeded(SensorTemperature, 31))
	assert.True(t, profile.Exceeded(SensorPH, 4.9))
	// no threshold configured for co2
	assert.False(t, profile.Exceeded(SensorCO2, 100000))
}

func TestParseProfileRejectsInvalid(t *testing.T) {
	// threshold missing max
	_, err := ParseProfile([]byte(`{"thresholds": {"temperature": {"min": 1}}}`))
	assert.Error(t, err)

	// unknown top-level key
	_, err = ParseProfile([]byte(`{"colors": {}}`))
	assert.Error(t, err)

	// not json at all
	_, err = ParseProfile([]byte(`{`))
	assert.Error(t, err)
}

func TestProfileNilSafe(t *testing.T) {
	var profile *Profile
	assert.False(t, profile.Exceeded(SensorTemperature, 99))
	assert.Equal(t, SensorTemperature, profile.DisplayName(SensorTemperature))
}
