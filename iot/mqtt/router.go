package mqtt

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/nthing-link/farmsync/farm"
)

// Route parses an inbound topic plus raw payload into a typed event. The
// topic must have exactly five /-delimited segments,
// {farm}/{gateway class}/{gateway id}/res/{action}; the payload must be a
// JSON document. Malformed input yields an error, never a panic, so the
// connection event loop can log and drop the message.
func Route(topic string, payload []byte) (Event, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 {
		return Event{}, fmt.Errorf("malformed topic %q: expected 5 segments, got %d", topic, len(parts))
	}

	ev := Event{
		Topic:     topic,
		FarmID:    parts[0],
		GatewayID: parts[2],
		Action:    parts[4],
		Class:     farm.ClassController,
	}
	if strings.Contains(parts[1], "sensor") {
		ev.Class = farm.ClassSensor
	}

	if err := json.Unmarshal(payload, &ev.Raw); err != nil {
		return Event{}, fmt.Errorf("undecodable payload on %q: %w", topic, err)
	}

	// Payload shape depends on (class, action). Acknowledgements are opaque
	// and forwarded raw; so are actions this router does not know yet.
	switch {
	case ev.Class == farm.ClassSensor && ev.Action == ActionSensors:
		data := SensorData{}
		if err := json.Unmarshal(ev.Raw, &data); err != nil {
			return Event{}, fmt.Errorf("bad sensor payload on %q: %w", topic, err)
		}
		ev.Sensor = &data
	case ev.Class == farm.ClassController && ev.Action == ActionUpdate:
		data := ControllerUpdate{}
		if err := json.Unmarshal(ev.Raw, &data); err != nil {
			return Event{}, fmt.Errorf("bad controller update payload on %q: %w", topic, err)
		}
		ev.Controller = &data
	case ev.Class == farm.ClassController && ev.Action == ActionStatus:
		data := ControllerStatus{}
		if err := json.Unmarshal(ev.Raw, &data); err != nil {
			return Event{}, fmt.Errorf("bad controller status payload on %q: %w", topic, err)
		}
		ev.Status = &data
	}

	return ev, nil
}
