// Package weather turns current site weather into concreting advice
package weather

// WMO weather codes from 51 upward are drizzle, rain, showers or storms
const rainCodeFrom = 51

// Temperature thresholds in °C
const (
	HotAbove  = 32.0
	ColdBelow = 15.0
)

// Condition is a coarse weather class
type Condition string

const (
	Clear Condition = "Clear"
	Rainy Condition = "Rainy"
	Hot   Condition = "Very Hot"
	Cold  Condition = "Cold"
)

// Advisory is the site advice for the current weather
type Advisory struct {
	TemperatureC float64   `json:"temperature_c"`
	WeatherCode  int       `json:"weather_code"`
	Condition    Condition `json:"condition"`
	Advice       string    `json:"advice"`
	SafeToPour   bool      `json:"safe_to_pour"`
}

// Advise classifies the weather. Rain takes precedence over temperature.
func Advise(tempC float64, wmoCode int) Advisory {
	a := Advisory{
		TemperatureC: tempC,
		WeatherCode:  wmoCode,
		Condition:    Clear,
		Advice:       "Site conditions are optimal. Proceed with all works.",
		SafeToPour:   true,
	}
	switch {
	case wmoCode >= rainCodeFrom:
		a.Condition = Rainy
		a.Advice = "RAIN ALERT: Do NOT pour concrete or apply external paint. Cover delivered cement immediately."
		a.SafeToPour = false
	case tempC > HotAbove:
		a.Condition = Hot
		a.Advice = "HEAT WARNING: High evaporation rate. Increase curing (watering) for concrete and blocks to prevent cracking."
	case tempC < ColdBelow:
		a.Condition = Cold
		a.Advice = "COLD WEATHER: Concrete setting time will be delayed. Allow extra time before striking formwork."
	}
	return a
}
