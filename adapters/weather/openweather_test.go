package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func f(v float64) *float64 { return &v }

func TestSpeakConditionsFullReport(t *testing.T) {
	w := &conditions{}
	w.Main.Temp = f(8)
	w.Main.FeelsLike = f(4)
	w.Main.Humidity = f(72)
	w.Wind.Speed = f(6.2)
	w.Wind.Deg = f(270)
	w.Clouds.All = f(40)
	w.Weather = []struct {
		Description string `json:"description"`
	}{{Description: "scattered clouds"}}

	got := speakConditions(w, "Glasgow, Scotland, GB")
	want := "It is 8 degrees Celsius in Glasgow with scattered clouds and high humidity " +
		"and a moderate breeze from the west. It feels like 4 degrees Celsius."
	if got != want {
		t.Errorf("speakConditions =\n%q\nwant\n%q", got, want)
	}
}

func TestSpeakConditionsMinimal(t *testing.T) {
	w := &conditions{}
	w.Main.Temp = f(21)
	w.Clouds.All = f(3)

	got := speakConditions(w, "Lisbon, PT")
	want := "It is 21 degrees Celsius in Lisbon, Pt with clear skies."
	if got != want {
		t.Errorf("speakConditions = %q, want %q", got, want)
	}
}

func TestWindAndCloudLabels(t *testing.T) {
	if got := windLabel(f(0.2)); got != "calm air" {
		t.Errorf("windLabel(0.2) = %q", got)
	}
	if got := windLabel(f(25)); got != "storm force winds" {
		t.Errorf("windLabel(25) = %q", got)
	}
	if got := cloudsLabel(f(90)); got != "overcast skies" {
		t.Errorf("cloudsLabel(90) = %q", got)
	}
	if got := windDirWords(f(0)); got != "north" {
		t.Errorf("windDirWords(0) = %q", got)
	}
	if got := windDirWords(f(180)); got != "south" {
		t.Errorf("windDirWords(180) = %q", got)
	}
}

func TestPrecipPhrasePrefersHourly(t *testing.T) {
	got := precipPhrase("rain", f(0.5), f(2.5))
	if got != "light rain, about 0.5 millimetres in the last hour" {
		t.Errorf("precipPhrase = %q", got)
	}
	got = precipPhrase("snow", nil, f(4.0))
	if got != "heavy snow, about 4.0 millimetres in the last three hours" {
		t.Errorf("precipPhrase = %q", got)
	}
}

func TestCurrentGeocodesAndReports(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "glasgow" {
			t.Errorf("geocode query = %q, want glasgow", q)
		}
		w.Write([]byte(`[{"name":"Glasgow","country":"GB","lat":55.86,"lon":-4.25}]`))
	})
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"main":{"temp":9.4,"feels_like":9.1,"humidity":80},
			"weather":[{"description":"light rain"}],"clouds":{"all":90},
			"wind":{"speed":3.0},"name":"Glasgow"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ow := NewOpenWeather("test-key", "", zaptest.NewLogger(t))
	ow.apiBaseURL = server.URL

	got, err := ow.Current(context.Background(), "glasgow")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if !strings.HasPrefix(got, "It is 9 degrees Celsius in Glasgow with light rain") {
		t.Errorf("sentence = %q", got)
	}
}

func TestCurrentUnknownPlace(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ow := NewOpenWeather("test-key", "", zaptest.NewLogger(t))
	ow.apiBaseURL = server.URL

	got, err := ow.Current(context.Background(), "atlantis")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got != "No results for 'atlantis'." {
		t.Errorf("got %q", got)
	}
}

func TestCurrentRequiresAPIKey(t *testing.T) {
	ow := NewOpenWeather("", "", zaptest.NewLogger(t))
	if _, err := ow.Current(context.Background(), "glasgow"); err == nil {
		t.Error("expected an error without an API key")
	}
}
