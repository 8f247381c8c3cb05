package state

import (
	"sync"
	"time"

	"github.com/nthing-link/farmsync/farm"
)

// SensorUpdate is a decoded sensor reading to be merged into the tree.
type SensorUpdate struct {
	SensorType  string
	SensorValue float64
	// ResTime is the broker-reported time in epoch seconds.
	ResTime int64
}

// ControllerUpdate is a decoded controller state change to be merged into
// the tree. SwitchState is the literal wire value, "true" or "false".
type ControllerUpdate struct {
	Channel     int
	SwitchState string
}

// Tree is the shared gateway/device state of one monitoring session.
type Tree struct {
	mu       sync.RWMutex
	gateways []farm.Gateway

	now func() time.Time
}

// NewTree returns an empty tree. Call Load with the fetched inventory
// before attaching it to the live engine.
func NewTree() *Tree {
	return &Tree{now: time.Now}
}

// Load replaces the tree content with a freshly fetched inventory. The
// gateways are deep-copied so the caller's slice stays independent.
func (t *Tree) Load(gateways []farm.Gateway) {
	copied := make([]farm.Gateway, len(gateways))
	for i, gw := range gateways {
		copied[i] = gw.Clone()
	}
	t.mu.Lock()
	t.gateways = copied
	t.mu.Unlock()
}

// Snapshot returns a deep copy of all gateways. The copy is taken under the
// tree lock, so it is consistent relative to a single inbound message.
func (t *Tree) Snapshot() []farm.Gateway {
	t.mu.RLock()
	defer t.mu.RUnlock()
	copied := make([]farm.Gateway, len(t.gateways))
	for i, gw := range t.gateways {
		copied[i] = gw.Clone()
	}
	return copied
}

// Gateway returns a deep copy of the gateway with the given id.
func (t *Tree) Gateway(gid string) (farm.Gateway, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.gateways {
		if t.gateways[i].GID == gid {
			return t.gateways[i].Clone(), true
		}
	}
	return farm.Gateway{}, false
}

// ApplySensorUpdate merges a sensor reading into the tree. The target
// gateway is located by id; updates for gateways not in the inventory are
// ignored, staleness relative to the broker's view is expected and benign.
//
// Every device whose normalized type equals the normalized update type
// receives the new value. A gateway carrying two devices of the same
// canonical type therefore has both updated by one message; this mirrors
// the behavior of the deployed system.
//
// Returns true if a gateway was found and touched.
func (t *Tree) ApplySensorUpdate(gid string, u SensorUpdate) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	gw := t.find(gid)
	if gw == nil {
		return false
	}

	millis := u.ResTime * 1000
	touchLastUpdate(gw, millis)

	want := farm.NormalizeSensorType(u.SensorType)
	for i := range gw.DeviceList {
		d := &gw.DeviceList[i]
		if farm.NormalizeSensorType(d.DType) != want {
			continue
		}
		value := u.SensorValue
		d.Status = &value
		d.ResDate = millis
	}
	return true
}

// ApplyControllerUpdate merges a controller switch change into the tree.
// The target device is matched by exact channel number, never by type or
// identifier. Controller update messages carry no embedded timestamp, so
// the gateway's last update is set to the receive time.
//
// Returns true if a gateway was found and touched.
func (t *Tree) ApplyControllerUpdate(gid string, u ControllerUpdate) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	gw := t.find(gid)
	if gw == nil {
		return false
	}

	for i := range gw.DeviceList {
		d := &gw.DeviceList[i]
		if d.Num != u.Channel {
			continue
		}
		value := 0.0
		if u.SwitchState == "true" {
			value = 1.0
		}
		d.Status = &value
	}
	touchLastUpdate(gw, t.now().UnixMilli())
	return true
}

// ApplyControllerStatus records gateway-level status information, currently
// the firmware version and the broker-reported time.
func (t *Tree) ApplyControllerStatus(gid string, firmwareVersion string, resTime int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	gw := t.find(gid)
	if gw == nil {
		return false
	}
	if firmwareVersion != "" {
		gw.FirmwareVersion = firmwareVersion
	}
	touchLastUpdate(gw, resTime*1000)
	return true
}

// find returns a pointer into the gateway slice; callers must hold the lock.
func (t *Tree) find(gid string) *farm.Gateway {
	for i := range t.gateways {
		if t.gateways[i].GID == gid {
			return &t.gateways[i]
		}
	}
	return nil
}

// touchLastUpdate overwrites the gateway timestamp only with equal or newer
// times, so an out-of-order or duplicate message never regresses it.
func touchLastUpdate(gw *farm.Gateway, millis int64) {
	if millis >= gw.LastUpdate {
		gw.LastUpdate = millis
	}
}
