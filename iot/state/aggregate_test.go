package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nthing-link/farmsync/farm"
)

func TestSummarize(t *testing.T) {
	devices := []farm.Device{
		{DID: "d1", DType: "air_temp", Status: f(20)},
		{DID: "d2", DType: "temperature", Status: f(24)},
		{DID: "d3", DType: "humidity", Status: f(55)},
		{DID: "d4", DType: "humidity"}, // no reading yet
	}

	summary := Summarize(devices, farm.NormalizeSensorType)

	assert.Equal(t, 2, summary[farm.SensorTemperature].Count)
	assert.Equal(t, []float64{20, 24}, summary[farm.SensorTemperature].Values)
	assert.Equal(t, 1, summary[farm.SensorHumidity].Count)

	avg, ok := summary.Average(farm.SensorTemperature)
	assert.True(t, ok)
	assert.Equal(t, 22.0, avg)

	min, ok := summary.Min(farm.SensorTemperature)
	assert.True(t, ok)
	assert.Equal(t, 20.0, min)

	max, ok := summary.Max(farm.SensorTemperature)
	assert.True(t, ok)
	assert.Equal(t, 24.0, max)

	_, ok = summary.Average(farm.SensorCO2)
	assert.False(t, ok)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, farm.NormalizeSensorType)
	assert.Empty(t, summary)

	_, ok := summary.Average(farm.SensorTemperature)
	assert.False(t, ok)
}

func TestSummarizeGateways(t *testing.T) {
	gateways := []farm.Gateway{
		{GID: "gw-1", DeviceList: []farm.Device{{DID: "d1", DType: "air_temp", Status: f(18)}}},
		{GID: "gw-2", DeviceList: []farm.Device{{DID: "d2", DType: "temperature", Status: f(22)}}},
	}
	summary := SummarizeGateways(gateways, farm.NormalizeSensorType)
	avg, ok := summary.Average(farm.SensorTemperature)
	assert.True(t, ok)
	assert.Equal(t, 20.0, avg)
}

func TestSummarizeControllers(t *testing.T) {
	gateways := []farm.Gateway{
		{GID: "gw-1", GType: farm.ClassController, DeviceList: []farm.Device{
			{DID: "d1", DType: "led", Num: 1, Status: f(1)},
			{DID: "d2", DType: "pump", Num: 2, Status: f(0)},
		}},
		{GID: "gw-2", GType: farm.ClassController, DeviceList: []farm.Device{
			{DID: "d3", DType: "switch", Num: 1, Status: f(1)},
			{DID: "d4", DType: "switch", Num: 2}, // unknown state counts as off
		}},
	}
	summary := SummarizeControllers(gateways)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.On)

	assert.Equal(t, ControllerSummary{}, SummarizeControllers(nil))
}

func TestSummarizeControllersMixedSnapshot(t *testing.T) {
	// A sensor reading of exactly 1.0 must not count as a switched-on
	// controller when the full mixed snapshot is summarized.
	gateways := []farm.Gateway{
		{GID: "gw-1", GType: farm.ClassSensor, DeviceList: []farm.Device{
			{DID: "d1", DType: "water_level", Status: f(1)},
		}},
		{GID: "gw-2", GType: farm.ClassController, DeviceList: []farm.Device{
			{DID: "d2", DType: "pump", Num: 3, Status: f(0)},
		}},
	}
	summary := SummarizeControllers(gateways)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 0, summary.On)
}
