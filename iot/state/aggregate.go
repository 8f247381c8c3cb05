package state

import "github.com/nthing-link/farmsync/farm"

// TypeSummary collects the readings of one canonical sensor type.
type TypeSummary struct {
	Values []float64 `json:"values"`
	Count  int       `json:"count"`
}

// Summary maps canonical sensor types to their collected readings.
type Summary map[string]TypeSummary

// Summarize groups device readings by normalized sensor type. Devices
// without a reading are skipped. The summary is recomputed fresh from the
// passed devices on every call and holds no state of its own.
func Summarize(devices []farm.Device, normalize func(string) string) Summary {
	summary := Summary{}
	for _, d := range devices {
		if d.Status == nil {
			continue
		}
		key := normalize(d.DType)
		ts := summary[key]
		ts.Values = append(ts.Values, *d.Status)
		ts.Count++
		summary[key] = ts
	}
	return summary
}

// SummarizeGateways flattens the device lists of all gateways into one
// summary.
func SummarizeGateways(gateways []farm.Gateway, normalize func(string) string) Summary {
	summary := Summary{}
	for _, gw := range gateways {
		for _, d := range gw.DeviceList {
			if d.Status == nil {
				continue
			}
			key := normalize(d.DType)
			ts := summary[key]
			ts.Values = append(ts.Values, *d.Status)
			ts.Count++
			summary[key] = ts
		}
	}
	return summary
}

// Average returns the mean reading for the given canonical type, or false
// if the summary holds no readings for it.
func (s Summary) Average(sensorType string) (float64, bool) {
	ts, ok := s[sensorType]
	if !ok || len(ts.Values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range ts.Values {
		sum += v
	}
	return sum / float64(len(ts.Values)), true
}

// Min returns the smallest reading for the given canonical type.
func (s Summary) Min(sensorType string) (float64, bool) {
	ts, ok := s[sensorType]
	if !ok || len(ts.Values) == 0 {
		return 0, false
	}
	min := ts.Values[0]
	for _, v := range ts.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// Max returns the largest reading for the given canonical type.
func (s Summary) Max(sensorType string) (float64, bool) {
	ts, ok := s[sensorType]
	if !ok || len(ts.Values) == 0 {
		return 0, false
	}
	max := ts.Values[0]
	for _, v := range ts.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// ControllerSummary counts controller devices and how many are switched on.
type ControllerSummary struct {
	Total int `json:"total"`
	On    int `json:"on"`
}

// SummarizeControllers counts the controller devices across all gateways.
// Gateways of other classes are skipped, so a mixed snapshot can be passed
// as-is.
func SummarizeControllers(gateways []farm.Gateway) ControllerSummary {
	summary := ControllerSummary{}
	for _, gw := range gateways {
		if gw.GType != farm.ClassController {
			continue
		}
		for _, d := range gw.DeviceList {
			summary.Total++
			if d.On() {
				summary.On++
			}
		}
	}
	return summary
}
