package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentBody = `{
	"name": "Warszawa",
	"weather": [{"description": "zachmurzenie umiarkowane", "icon": "03d"}],
	"main": {"temp": 12.46, "humidity": 71, "pressure": 1013},
	"wind": {"speed": 4.2}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Options{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Lang:    "pl",
	})
}

func TestCurrent(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Warsaw", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "pl", r.URL.Query().Get("lang"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		w.Write([]byte(currentBody))
	})

	report, err := client.Current(context.Background(), "Warsaw")
	require.NoError(t, err)

	assert.Equal(t, &Report{
		City:        "Warszawa",
		Condition:   "zachmurzenie umiarkowane",
		Temperature: 12.5,
		Humidity:    71,
		WindSpeed:   15.1,
		Pressure:    1013,
		Icon:        "03d",
		Emoji:       "⛅",
	}, report)
	assert.Equal(t, "https://openweathermap.org/img/wn/03d@2x.png", report.IconURL())

	t.Run("cached for the refresh window", func(t *testing.T) {
		_, err := client.Current(context.Background(), "warsaw")
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())

		client.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
		_, err = client.Current(context.Background(), "Warsaw")
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestCurrentErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Atlantis" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Current(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrCityRequired)

	_, err = client.Current(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)

	_, err = client.Current(context.Background(), "Warsaw")
	assert.ErrorContains(t, err, "500")

	unconfigured := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	_, err = unconfigured.Current(context.Background(), "Warsaw")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCurrentWithoutIcon(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Gdańsk", "weather": [{"description": "lekki deszcz"}], "main": {"temp": 8}}`))
	})

	report, err := client.Current(context.Background(), "Gdańsk")
	require.NoError(t, err)
	assert.Empty(t, report.IconURL())
	assert.Equal(t, "🌧️", report.Emoji)
}

func TestSearchCities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Write([]byte(`[
			{"name": "Warsaw", "local_names": {"pl": "Warszawa"}, "country": "PL", "state": "Masovian Voivodeship", "lat": 52.23, "lon": 21.01},
			{"name": "Warsaw", "country": "US", "state": "Indiana", "lat": 41.23, "lon": -85.85}
		]`))
	})

	cities, err := client.SearchCities(context.Background(), "Warsaw")
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Warszawa", cities[0].Name)
	assert.Equal(t, "PL", cities[0].Country)
	assert.Equal(t, "Warsaw", cities[1].Name)
	assert.Equal(t, "Indiana", cities[1].State)

	_, err = client.SearchCities(context.Background(), " Łó ")
	assert.ErrorIs(t, err, ErrQueryTooShort)
}

func TestEmoji(t *testing.T) {
	tests := []struct {
		condition string
		want      string
	}{
		{"Pogodnie", "☀️"},
		{"clear sky", "☀️"},
		{"zachmurzenie duże", "⛅"},
		{"lekki deszcz", "🌧️"},
		{"burza z deszczem", "🌧️"},
		{"burza", "⛈️"},
		{"śnieg", "❄️"},
		{"mgła", "🌫️"},
		{"", "🌤️"},
		{"volcanic ash", "🌤️"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Emoji(tt.condition), "condition=%q", tt.condition)
	}
}
