package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Zinko5/newsbot/internal/adapters/config"
	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	requestTimeout = 5 * time.Second
)

type coordinates struct {
	City      string
	Latitude  float64
	Longitude float64
}

// capitals maps normalized department or capital names to coordinates.
// Keys are upper-case with accents stripped. Department names alias to
// their capital city.
var capitals = map[string]coordinates{
	"SANTA CRUZ": {"Santa Cruz", -17.78, -63.18},
	"LA PAZ":     {"La Paz", -16.50, -68.15},
	"COCHABAMBA": {"Cochabamba", -17.39, -66.16},
	"SUCRE":      {"Sucre", -19.03, -65.26},
	"ORURO":      {"Oruro", -17.98, -67.13},
	"POTOSI":     {"Potosí", -19.58, -65.75},
	"TARIJA":     {"Tarija", -21.53, -64.73},
	"TRINIDAD":   {"Trinidad", -14.83, -64.90},
	"COBIJA":     {"Cobija", -11.03, -68.73},
	"BENI":       {"Trinidad", -14.83, -64.90},
	"PANDO":      {"Cobija", -11.03, -68.73},
	"CHUQUISACA": {"Sucre", -19.03, -65.26},
}

var weatherWords = []string{
	"clima", "temperatura", "calor", "frio", "lluvia", "llover",
	"pronostico", "cuantos grados", "que tiempo hace",
}

// Client fetches current conditions from Open-Meteo and caches them
// per city for a short TTL.
type Client struct {
	httpClient  *http.Client
	cache       *gocache.Cache
	baseURL     string
	defaultCity string
	enabled     bool
}

func NewClient(cfg *config.WeatherConfig) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		cache:       gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		baseURL:     defaultBaseURL,
		defaultCity: cfg.DefaultCity,
		enabled:     cfg.Enabled,
	}
}

// IsWeatherQuestion reports whether a question asks about the weather.
func IsWeatherQuestion(question string) bool {
	q := normalize(question)
	for _, w := range weatherWords {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

// ExtractCity returns the city or department mentioned in the question,
// or an empty string when none is recognized.
func ExtractCity(question string) string {
	q := strings.ToUpper(normalize(question))
	for key, c := range capitals {
		if strings.Contains(q, key) {
			return c.City
		}
	}
	return ""
}

// ForQuestion returns current conditions when the question asks about
// the weather. Any failure yields nil so the caller answers from news
// alone.
func (c *Client) ForQuestion(ctx context.Context, question string) *models.WeatherReport {
	if c == nil || !c.enabled || !IsWeatherQuestion(question) {
		return nil
	}

	city := ExtractCity(question)
	if city == "" {
		city = c.defaultCity
	}

	report, err := c.Current(ctx, city)
	if err != nil {
		logger.Warn("weather lookup failed",
			zap.String("city", city),
			zap.Error(err),
		)
		return nil
	}
	return report
}

// Current fetches current conditions for a known city or department.
func (c *Client) Current(ctx context.Context, city string) (*models.WeatherReport, error) {
	coords, ok := capitals[strings.ToUpper(normalize(city))]
	if !ok {
		return nil, fmt.Errorf("unknown city: %s", city)
	}

	if cached, found := c.cache.Get(coords.City); found {
		report := cached.(models.WeatherReport)
		return &report, nil
	}

	report, err := c.fetch(ctx, coords)
	if err != nil {
		return nil, err
	}

	c.cache.Set(coords.City, *report, gocache.DefaultExpiration)
	return report, nil
}

type currentWeather struct {
	Temperature float64 `json:"temperature"`
	WeatherCode int     `json:"weathercode"`
}

type forecastResponse struct {
	CurrentWeather currentWeather `json:"current_weather"`
}

func (c *Client) fetch(ctx context.Context, coords coordinates) (*models.WeatherReport, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.2f", coords.Latitude))
	params.Set("longitude", fmt.Sprintf("%.2f", coords.Longitude))
	params.Set("current_weather", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("weather API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	condition, icon := describeCode(parsed.CurrentWeather.WeatherCode)
	return &models.WeatherReport{
		City:        coords.City,
		Temperature: parsed.CurrentWeather.Temperature,
		Condition:   condition,
		Icon:        icon,
	}, nil
}

// describeCode maps a WMO weather code to a Spanish condition and icon.
func describeCode(code int) (string, string) {
	switch code {
	case 0:
		return "Despejado", "☀️"
	case 1:
		return "Mayormente despejado", "🌤️"
	case 2:
		return "Parcialmente nublado", "⛅"
	case 3:
		return "Nublado", "☁️"
	case 45, 48:
		return "Niebla", "🌫️"
	case 51, 53, 55:
		return "Llovizna", "🌦️"
	case 61, 63, 65:
		return "Lluvia", "🌧️"
	case 71, 73, 75:
		return "Nieve", "🌨️"
	case 80, 81, 82:
		return "Chubascos", "🌧️"
	case 95:
		return "Tormenta", "⛈️"
	case 96, 99:
		return "Tormenta con granizo", "⛈️"
	default:
		return "Condición desconocida", "🌡️"
	}
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U",
)

func normalize(s string) string {
	return accentFolder.Replace(strings.ToLower(s))
}
