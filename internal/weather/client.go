// AngelaMos | 2026
// client.go

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
	"unicode"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ecoplagas/backend/internal/config"
	"github.com/ecoplagas/backend/internal/core"
)

var (
	ErrCityNotFound  = errors.New("city not found")
	ErrNotConfigured = errors.New("weather api key not configured")
)

// Report is the reshaped provider payload returned to clients.
type Report struct {
	City        string  `json:"ciudad"`
	Country     string  `json:"pais"`
	Temperature int     `json:"temperatura"`
	FeelsLike   int     `json:"sensacion"`
	Description string  `json:"descripcion"`
	Humidity    int     `json:"humedad"`
	WindSpeed   float64 `json:"viento"`
	Icon        string  `json:"icono"`
}

type providerResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

type Client struct {
	baseURL  string
	apiKey   string
	units    string
	language string
	http     *http.Client
	lookups  *prometheus.CounterVec
}

func NewClient(
	cfg config.WeatherConfig,
	httpClient *http.Client,
	reg prometheus.Registerer,
) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecoplagas_weather_lookups_total",
		Help: "Weather provider lookups by outcome.",
	}, []string{"outcome"})
	if reg != nil {
		reg.MustRegister(lookups)
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		units:    cfg.Units,
		language: cfg.Language,
		http:     httpClient,
		lookups:  lookups,
	}
}

// Lookup fetches current conditions for city. Any non-200 answer from the
// provider is reported as ErrCityNotFound.
func (c *Client) Lookup(ctx context.Context, city string) (report *Report, err error) {
	city = strings.TrimSpace(city)
	if city == "" {
		c.lookups.WithLabelValues(outcome(core.ErrEmptyInput)).Inc()
		return nil, core.ErrEmptyInput
	}

	ctx, span := core.StartSpan(ctx, "weather.lookup",
		attribute.String("weather.city", city),
	)
	defer func() {
		c.lookups.WithLabelValues(outcome(err)).Inc()
		if errors.Is(err, ErrCityNotFound) {
			span.End()
			return
		}
		core.EndSpan(span, err)
	}()

	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(city), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call weather provider: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup %q: status %d: %w", city, resp.StatusCode, ErrCityNotFound)
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	if len(body.Weather) == 0 {
		return nil, fmt.Errorf("weather response for %q has no conditions: %w", city, core.ErrUpstream)
	}

	return &Report{
		City:        body.Name,
		Country:     body.Sys.Country,
		Temperature: int(math.RoundToEven(body.Main.Temp)),
		FeelsLike:   int(math.RoundToEven(body.Main.FeelsLike)),
		Description: capitalize(body.Weather[0].Description),
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
		Icon:        body.Weather[0].Icon,
	}, nil
}

func (c *Client) requestURL(city string) string {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)
	q.Set("lang", c.language)

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + q.Encode()
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCityNotFound):
		return "not_found"
	case errors.Is(err, core.ErrEmptyInput):
		return "empty"
	default:
		return "error"
	}
}
