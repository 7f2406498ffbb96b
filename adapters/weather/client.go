// Package weather fetches current site weather from Open-Meteo and turns
// it into concreting advice
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sitemate/core/types"
	"sitemate/core/weather"
	"sitemate/internal/errors"
)

// DefaultBaseURL is the Open-Meteo API root
const DefaultBaseURL = "https://api.open-meteo.com"

// Coordinates is a site position in decimal degrees
type Coordinates struct {
	Lat float64
	Lon float64
}

// Sites holds the coordinates of the known locations
var Sites = map[types.Location]Coordinates{
	types.LocationLekki:  {Lat: 6.4698, Lon: 3.5852},
	types.LocationIbadan: {Lat: 7.3775, Lon: 3.9470},
	types.LocationAbuja:  {Lat: 9.0765, Lon: 7.3986},
}

// Client calls the forecast endpoint
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Current returns the advisory for a known site
func (c *Client) Current(ctx context.Context, location types.Location) (weather.Advisory, error) {
	site, ok := Sites[location]
	if !ok {
		return weather.Advisory{}, errors.NotFound("site coordinates", string(location))
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", site.Lat))
	q.Set("longitude", fmt.Sprintf("%.4f", site.Lon))
	q.Set("current_weather", "true")
	q.Set("daily", "precipitation_sum,rain_sum")
	q.Set("timezone", "Africa/Lagos")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return weather.Advisory{}, errors.Internal("failed to build forecast request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return weather.Advisory{}, errors.Timeout("weather", ctx.Err())
		}
		return weather.Advisory{}, errors.Network("forecast request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.Advisory{}, errors.Newf(errors.TypeNetwork, "forecast returned %d", resp.StatusCode)
	}

	var out forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return weather.Advisory{}, errors.Parsing("invalid forecast response", err)
	}
	return weather.Advise(out.CurrentWeather.Temperature, out.CurrentWeather.WeatherCode), nil
}
