package farm

// EnvironmentRange is a target band for one environmental quantity.
type EnvironmentRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Target float64 `json:"target"`
}

// LightSchedule is the photoperiod of a site: switch-on and switch-off
// times as "HH:MM" strings, plus the dimming level in percent.
type LightSchedule struct {
	On         string `json:"on"`
	Off        string `json:"off"`
	Brightness int    `json:"brightness"`
}

// EnvironmentSettings are the cultivation targets applied to a site, either
// directly or through a recipe. All bands are optional.
type EnvironmentSettings struct {
	Temperature *EnvironmentRange `json:"temperature,omitempty"`
	Humidity    *EnvironmentRange `json:"humidity,omitempty"`
	CO2         *EnvironmentRange `json:"co2,omitempty"`
	Light       *LightSchedule    `json:"light,omitempty"`
}

// Recipe is a reusable cultivation template: environment targets for one
// crop over a growing period of Duration days.
type Recipe struct {
	RecipeID    string              `json:"recipeId"`
	RecipeName  string              `json:"recipeName"`
	PlantName   string              `json:"plantName"`
	Category    string              `json:"category"`
	Environment EnvironmentSettings `json:"environment"`
	Duration    int                 `json:"duration"`
	Description string              `json:"description,omitempty"`
}

// Within reports whether value lies inside the band.
func (r *EnvironmentRange) Within(value float64) bool {
	return r != nil && value >= r.Min && value <= r.Max
}

// Range returns the band for a canonical sensor type, nil when the settings
// carry no band for it.
func (e *EnvironmentSettings) Range(sensorType string) *EnvironmentRange {
	if e == nil {
		return nil
	}
	switch sensorType {
	case SensorTemperature:
		return e.Temperature
	case SensorHumidity:
		return e.Humidity
	case SensorCO2:
		return e.CO2
	}
	return nil
}
