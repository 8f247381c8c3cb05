package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nthing-link/farmsync/farm"
)

func TestRouteSensorData(t *testing.T) {
	payload := []byte(`{"sensor_type":"temperature","sensor_val":23.4,"res_time":1700000000}`)
	ev, err := Route("farm1/sensor_gateway/gw-7/res/sensors", payload)
	require.NoError(t, err)

	assert.Equal(t, "farm1", ev.FarmID)
	assert.Equal(t, farm.ClassSensor, ev.Class)
	assert.Equal(t, "gw-7", ev.GatewayID)
	assert.Equal(t, ActionSensors, ev.Action)
	require.NotNil(t, ev.Sensor)
	assert.Equal(t, "temperature", ev.Sensor.SensorType)
	assert.Equal(t, 23.4, ev.Sensor.SensorValue)
	assert.Equal(t, int64(1700000000), ev.Sensor.ResTime)
	assert.JSONEq(t, string(payload), string(ev.Raw))
}

func TestRouteControllerUpdate(t *testing.T) {
	ev, err := Route("farm1/controller_gateway/gw-2/res/update", []byte(`{"ctr_ch":3,"switch_state":"true"}`))
	require.NoError(t, err)

	assert.Equal(t, farm.ClassController, ev.Class)
	assert.Equal(t, ActionUpdate, ev.Action)
	require.NotNil(t, ev.Controller)
	assert.Equal(t, 3, ev.Controller.Channel)
	assert.Equal(t, "true", ev.Controller.SwitchState)
}

func TestRouteControllerStatus(t *testing.T) {
	ev, err := Route("farm1/controller_gateway/gw-2/res/status",
		[]byte(`{"firmware_version":"2.0.1","res_time":1700000000,"target_ch_num":8}`))
	require.NoError(t, err)

	require.NotNil(t, ev.Status)
	assert.Equal(t, "2.0.1", ev.Status.FirmwareVersion)
	assert.Equal(t, 8, ev.Status.TargetChannels)
}

// TestRouteAck verifies acknowledgements stay opaque: the payload is
// forwarded raw and uninterpreted.
func TestRouteAck(t *testing.T) {
	ev, err := Route("farm1/sensor_gateway/gw-7/res/ack", []byte(`{"result":"ok","anything":[1,2]}`))
	require.NoError(t, err)

	assert.Equal(t, ActionAck, ev.Action)
	assert.Nil(t, ev.Sensor)
	assert.Nil(t, ev.Controller)
	assert.Nil(t, ev.Status)
	assert.JSONEq(t, `{"result":"ok","anything":[1,2]}`, string(ev.Raw))
}

func TestRouteMalformedTopic(t *testing.T) {
	for _, topic := range []string{
		"",
		"farm1",
		"farm1/sensor_gateway/gw-7/res",
		"farm1/sensor_gateway/gw-7/res/sensors/extra",
	} {
		_, err := Route(topic, []byte(`{}`))
		assert.Error(t, err, "topic %q", topic)
	}
}

func TestRouteUndecodablePayload(t *testing.T) {
	_, err := Route("farm1/sensor_gateway/gw-7/res/sensors", []byte(`{not json`))
	assert.Error(t, err)

	// valid json, wrong shape for the typed payload
	_, err = Route("farm1/sensor_gateway/gw-7/res/sensors", []byte(`{"sensor_val":"not-a-number"}`))
	assert.Error(t, err)
}

// TestRouteClassBySubstring pins the class decision: any gateway segment
// containing "sensor" is a sensor gateway, everything else is a controller.
func TestRouteClassBySubstring(t *testing.T) {
	ev, err := Route("farm1/sensor_gateway_v2/gw-1/res/ack", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, farm.ClassSensor, ev.Class)

	ev, err = Route("farm1/relay_gateway/gw-1/res/ack", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, farm.ClassController, ev.Class)
}

func TestTopicsFor(t *testing.T) {
	topics := TopicsFor("farm1")
	require.Len(t, topics, 5)
	assert.Equal(t, []string{
		"farm1/sensor_gateway/+/res/sensors",
		"farm1/sensor_gateway/+/res/ack",
		"farm1/controller_gateway/+/res/update",
		"farm1/controller_gateway/+/res/status",
		"farm1/controller_gateway/+/res/ack",
	}, topics)
}
