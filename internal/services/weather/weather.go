// Package weather talks to the OpenWeatherMap current-weather and geocoding APIs.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

var (
	ErrCityRequired  = errors.New("city is required")
	ErrQueryTooShort = errors.New("search query must be at least 3 characters long")
	ErrNotConfigured = errors.New("weather API key is not configured")
	ErrCityNotFound  = errors.New("city not found")
)

const (
	minQueryLen   = 3
	searchLimit   = 5
	cacheDuration = 30 * time.Minute
)

type Report struct {
	City        string  `json:"city"`
	Condition   string  `json:"condition"`
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    int     `json:"pressure"`
	Icon        string  `json:"icon"`
	Emoji       string  `json:"emoji"`
}

// IconURL is empty when the provider didn't send an icon code; use Emoji then.
func (r *Report) IconURL() string {
	if r.Icon == "" {
		return ""
	}

	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", r.Icon)
}

type City struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type Options struct {
	BaseURL string
	APIKey  string
	Lang    string
	// Requests per minute allowed towards the provider.
	RateLimit int
	HTTP      *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	lang    string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cachedReport
}

type cachedReport struct {
	report    *Report
	fetchedAt time.Time
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	perMinute := opts.RateLimit
	if perMinute <= 0 {
		perMinute = 60
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		lang:    opts.Lang,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		now:     time.Now,
		cache:   make(map[string]cachedReport),
	}
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current returns the current weather for city. Reports are reused for half an hour, which is
// how often the dashboard refreshes the widget anyway.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrCityRequired
	}

	key := strings.ToLower(city)

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok && c.now().Sub(cached.fetchedAt) < cacheDuration {
		return cached.report, nil
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("units", "metric")

	var resp currentResponse
	if err := c.get(ctx, "/data/2.5/weather", query, &resp); err != nil {
		return nil, err
	}

	report := &Report{
		City:        resp.Name,
		Temperature: round1(resp.Main.Temp),
		Humidity:    resp.Main.Humidity,
		// Metric units report wind in m/s.
		WindSpeed: round1(resp.Wind.Speed * 3.6),
		Pressure:  resp.Main.Pressure,
	}
	if report.City == "" {
		report.City = city
	}
	if len(resp.Weather) > 0 {
		report.Condition = resp.Weather[0].Description
		report.Icon = resp.Weather[0].Icon
	}
	report.Emoji = Emoji(report.Condition)

	c.mu.Lock()
	c.cache[key] = cachedReport{report: report, fetchedAt: c.now()}
	c.mu.Unlock()

	return report, nil
}

func (c *Client) SearchCities(ctx context.Context, q string) ([]City, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minQueryLen {
		return nil, ErrQueryTooShort
	}

	query := url.Values{}
	query.Set("q", q)
	query.Set("limit", fmt.Sprint(searchLimit))

	var resp []struct {
		City
		LocalNames map[string]string `json:"local_names"`
	}
	if err := c.get(ctx, "/geo/1.0/direct", query, &resp); err != nil {
		return nil, err
	}

	result := make([]City, 0, len(resp))
	for _, r := range resp {
		city := r.City
		if local, ok := r.LocalNames[c.lang]; ok && local != "" {
			city.Name = local
		}
		result = append(result, city)
	}

	return result, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	query.Set("appid", c.apiKey)
	if c.lang != "" {
		query.Set("lang", c.lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling weather API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrCityNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API answered %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding weather API response: %w", err)
	}

	return nil
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
