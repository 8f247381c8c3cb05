package farm

import (
	"strconv"

	"github.com/goccy/go-json"
)

// GatewayClass tells whether a gateway aggregates sensors or controllers.
type GatewayClass string

// The two gateway classes known to the farm API.
const (
	ClassSensor     GatewayClass = "sensor"
	ClassController GatewayClass = "controller"
)

// DeviceMode is the operating mode of a controller device.
type DeviceMode string

// Controller operating modes.
const (
	ModeAuto   DeviceMode = "auto"
	ModeManual DeviceMode = "manual"
)

// Farm is the top-level installation unit, e.g. one physical farm location.
type Farm struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Site is a zone within a farm, e.g. one growing room. A site optionally
// carries the recipe applied to it and the resulting environment targets.
type Site struct {
	SID          string               `json:"sid"`
	SName        string               `json:"sname"`
	SType        string               `json:"stype"`
	Description  string               `json:"description,omitempty"`
	AlarmEnabled bool                 `json:"alarmEnabled"`
	Recipe       *Recipe              `json:"recipe,omitempty"`
	Environment  *EnvironmentSettings `json:"environment,omitempty"`
}

// Gateway is a physical relay aggregating several devices of one class.
//
// LastUpdate carries the broker-reported time of the most recent update in
// epoch milliseconds, zero if no update was received yet. It is one of only
// two fields the live reconciler ever mutates, the other being DeviceList.
type Gateway struct {
	GID             string       `json:"gid"`
	GName           string       `json:"gname"`
	GType           GatewayClass `json:"gtype"`
	SID             string       `json:"sid"`
	FirmwareVersion string       `json:"firmware_version,omitempty"`
	LastUpdate      int64        `json:"last_update,omitempty"`
	Channel         int          `json:"channel,omitempty"`
	DeviceList      []Device     `json:"deviceList"`
}

// Device is a single sensor or controller channel behind a gateway.
//
// Status holds the last observed sensor reading for sensor devices, or 1/0
// for controller devices. It is nil until the first reading arrives.
type Device struct {
	DID     string      `json:"did"`
	DType   string      `json:"dtype"`
	DName   string      `json:"dname"`
	Num     int         `json:"num"`
	Status  *float64    `json:"status"`
	ResDate int64       `json:"res_date,omitempty"`
	Mode    *DeviceMode `json:"mode,omitempty"`
	Unit    string      `json:"unit,omitempty"`
	Min     *float64    `json:"min,omitempty"`
	Max     *float64    `json:"max,omitempty"`
	Comment string      `json:"comment,omitempty"`
}

// DeviceAlias avoids recursion in UnmarshalJSON. It must be exported:
// goccy/go-json refuses to decode into an embedded pointer to an
// unexported struct type.
type DeviceAlias Device

// UnmarshalJSON decodes a device record. The inventory API is not consistent
// about the status field and delivers numbers, numeric strings, empty strings
// or null depending on the gateway firmware. Anything that does not parse as
// a number is treated as "no reading yet".
func (d *Device) UnmarshalJSON(data []byte) error {
	aux := struct {
		*DeviceAlias
		Status json.RawMessage `json:"status"`
	}{DeviceAlias: (*DeviceAlias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.Status = parseStatus(aux.Status)
	return nil
}

func parseStatus(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if num, err := strconv.ParseFloat(str, 64); err == nil {
			return &num
		}
	}
	return nil
}

// On reports whether a controller device is switched on.
func (d *Device) On() bool {
	return d.Status != nil && *d.Status == 1
}

// Clone returns a deep copy of the device.
func (d Device) Clone() Device {
	if d.Status != nil {
		status := *d.Status
		d.Status = &status
	}
	if d.Mode != nil {
		mode := *d.Mode
		d.Mode = &mode
	}
	if d.Min != nil {
		min := *d.Min
		d.Min = &min
	}
	if d.Max != nil {
		max := *d.Max
		d.Max = &max
	}
	return d
}

// Clone returns a deep copy of the gateway including its device list.
func (g Gateway) Clone() Gateway {
	devices := make([]Device, len(g.DeviceList))
	for i, d := range g.DeviceList {
		devices[i] = d.Clone()
	}
	g.DeviceList = devices
	return g
}
