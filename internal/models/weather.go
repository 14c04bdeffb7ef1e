package models

import (
	"strings"
	"time"
)

type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

func (c Condition) IconURL() string {
	return IconURL(c.Icon)
}

// CurrentConditions mirrors the "current" object of current.json.
type CurrentConditions struct {
	LastUpdatedEpoch int64     `json:"last_updated_epoch"`
	TempC            float64   `json:"temp_c"`
	TempF            float64   `json:"temp_f"`
	Condition        Condition `json:"condition"`
	Humidity         int       `json:"humidity"`
	FeelsLikeC       float64   `json:"feelslike_c"`
	FeelsLikeF       float64   `json:"feelslike_f"`
	UV               float64   `json:"uv"`
}

func (c CurrentConditions) LastUpdated() time.Time {
	return time.Unix(c.LastUpdatedEpoch, 0).UTC()
}

// WeatherRecord is a location paired with its current conditions.
type WeatherRecord struct {
	Location Location          `json:"location"`
	Current  CurrentConditions `json:"current"`
}

// IconURL turns a protocol-relative icon path into an absolute https URL.
// A leading "//" is dropped; anything else is prefixed as is.
func IconURL(path string) string {
	return "https://" + strings.TrimPrefix(path, "//")
}
