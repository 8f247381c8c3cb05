package mqtt

import (
	"github.com/goccy/go-json"

	"github.com/nthing-link/farmsync/farm"
)

// SensorData is the payload of a sensors message from a sensor gateway.
// ResTime is the broker-reported time in epoch seconds.
type SensorData struct {
	SensorType  string  `json:"sensor_type"`
	SensorValue float64 `json:"sensor_val"`
	ResTime     int64   `json:"res_time"`
}

// ControllerUpdate is the payload of an update message from a controller
// gateway. SwitchState carries the literal strings "true" or "false".
type ControllerUpdate struct {
	Channel     int    `json:"ctr_ch"`
	SwitchState string `json:"switch_state"`
}

// ControllerStatus is the payload of a status message from a controller
// gateway.
type ControllerStatus struct {
	FirmwareVersion string `json:"firmware_version"`
	ResTime         int64  `json:"res_time"`
	TargetChannels  int    `json:"target_ch_num"`
}

// Event is one decoded broker message. Raw always holds the decoded JSON
// payload; exactly one of the typed payload fields is set for the known
// (class, action) pairs, acknowledgements and unknown actions stay raw only.
type Event struct {
	Topic     string
	FarmID    string
	GatewayID string
	Class     farm.GatewayClass
	Action    string

	Raw        json.RawMessage
	Sensor     *SensorData
	Controller *ControllerUpdate
	Status     *ControllerStatus
}
