// Package weather reports current conditions from OpenWeather as one
// spoken sentence.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/emberhome/ember/domain/repositories"
)

// OpenWeather implements WeatherService via the geocoding and current
// conditions APIs. With no place and no default city it falls back to
// IP geolocation.
type OpenWeather struct {
	apiKey      string
	defaultCity string

	apiBaseURL string
	ipLocURL   string

	client *http.Client
	logger *zap.Logger
}

var _ repositories.WeatherService = (*OpenWeather)(nil)

func NewOpenWeather(apiKey, defaultCity string, logger *zap.Logger) *OpenWeather {
	return &OpenWeather{
		apiKey:      apiKey,
		defaultCity: defaultCity,
		apiBaseURL:  "https://api.openweathermap.org",
		ipLocURL:    "http://ip-api.com/json/",
		client:      &http.Client{Timeout: 8 * time.Second},
		logger:      logger,
	}
}

type geoResult struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type ipLocation struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	City        string  `json:"city"`
	CountryCode string  `json:"countryCode"`
}

type conditions struct {
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
		Gust  *float64 `json:"gust"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Clouds struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneH   *float64 `json:"1h"`
		ThreeH *float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		OneH   *float64 `json:"1h"`
		ThreeH *float64 `json:"3h"`
	} `json:"snow"`
	Visibility *float64 `json:"visibility"`
	Name       string   `json:"name"`
	Message    string   `json:"message"`
}

// Current implements repositories.WeatherService.
func (o *OpenWeather) Current(ctx context.Context, place string) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENWEATHER_API_KEY not set")
	}

	if place == "" {
		place = o.defaultCity
	}

	var lat, lon float64
	var label string
	var err error
	if place != "" {
		lat, lon, label, err = o.geocode(ctx, place)
		if err != nil {
			return "", err
		}
		if label == "" {
			return fmt.Sprintf("No results for '%s'.", place), nil
		}
	} else {
		lat, lon, label, err = o.locateByIP(ctx)
		if err != nil {
			return "", err
		}
	}

	w, err := o.fetch(ctx, lat, lon)
	if err != nil {
		return "", err
	}

	sentence := speakConditions(w, label)
	o.logger.Debug("weather report", zap.String("place", label), zap.String("sentence", sentence))
	return sentence, nil
}

func (o *OpenWeather) geocode(ctx context.Context, place string) (lat, lon float64, label string, err error) {
	u := fmt.Sprintf("%s/geo/1.0/direct?q=%s&limit=1&appid=%s",
		o.apiBaseURL, url.QueryEscape(place), o.apiKey)

	var results []geoResult
	if err = o.getJSON(ctx, u, &results); err != nil {
		return 0, 0, "", err
	}
	if len(results) == 0 {
		return 0, 0, "", nil
	}

	it := results[0]
	label = it.Name
	if it.State != "" {
		label += ", " + it.State
	}
	if it.Country != "" {
		label += ", " + it.Country
	}
	return it.Lat, it.Lon, label, nil
}

func (o *OpenWeather) locateByIP(ctx context.Context) (lat, lon float64, label string, err error) {
	var loc ipLocation
	if err = o.getJSON(ctx, o.ipLocURL, &loc); err != nil {
		return 0, 0, "", err
	}
	label = loc.City
	if loc.CountryCode != "" {
		if label != "" {
			label += ", "
		}
		label += loc.CountryCode
	}
	return loc.Lat, loc.Lon, label, nil
}

func (o *OpenWeather) fetch(ctx context.Context, lat, lon float64) (*conditions, error) {
	u := fmt.Sprintf("%s/data/2.5/weather?lat=%f&lon=%f&units=metric&appid=%s",
		o.apiBaseURL, lat, lon, o.apiKey)

	var w conditions
	if err := o.getJSON(ctx, u, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (o *OpenWeather) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather request failed with status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
