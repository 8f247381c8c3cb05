package farm

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/xeipuuv/gojsonschema"
)

// Profile is an optional per-deployment description of a farm: display
// names for canonical sensor types and alert thresholds used by the
// monitoring service. It is supplied as a JSON document and validated
// against profileSchema before use.
type Profile struct {
	DisplayNames map[string]string    `json:"display_names,omitempty"`
	Thresholds   map[string]Threshold `json:"thresholds,omitempty"`
}

// Threshold is the acceptable range for one canonical sensor type.
type Threshold struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var profileSchema = `{
	"$id": "farm_profile",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"display_names": {
			"type": "object",
			"additionalProperties": { "type": "string" }
		},
		"thresholds": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"required": ["min", "max"],
				"additionalProperties": false,
				"properties": {
					"min": { "type": "number" },
					"max": { "type": "number" }
				}
			}
		}
	}
}`

// ParseProfile validates data against the profile schema and decodes it.
func ParseProfile(data []byte) (*Profile, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
	if err != nil {
		return nil, fmt.Errorf("cannot compile profile schema %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot validate profile %w", err)
	}
	if !result.Valid() {
		msg := "the profile is not valid :\n"
		for _, e := range result.Errors() {
			msg += fmt.Sprintf("- %s\n", e)
		}
		return nil, errors.New(msg)
	}

	profile := Profile{}
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Exceeded reports whether value lies outside the threshold for the given
// canonical sensor type. Types without a configured threshold never alert.
func (p *Profile) Exceeded(sensorType string, value float64) bool {
	if p == nil {
		return false
	}
	th, ok := p.Thresholds[sensorType]
	if !ok {
		return false
	}
	return value < th.Min || value > th.Max
}

// DisplayName returns the configured display name for a canonical sensor
// type, falling back to the type itself.
func (p *Profile) DisplayName(sensorType string) string {
	if p != nil {
		if name, ok := p.DisplayNames[sensorType]; ok {
			return name
		}
	}
	return sensorType
}
