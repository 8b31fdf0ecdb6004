// Package weather wraps the current-weather API used by the weather sync job.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"paso-monitor-server/internal/models"
)

type Client struct {
	httpc   *http.Client
	baseURL string
	apiKey  string
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type apiResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Current fetches the latest reading for city in metric units.
func (c *Client) Current(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather for %s: %w", city, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	snap := &models.WeatherSnapshot{
		City:     city,
		TempC:    parsed.Main.Temp,
		Humidity: parsed.Main.Humidity,
	}
	if len(parsed.Weather) > 0 {
		snap.Description = parsed.Weather[0].Description
	}
	return snap, nil
}
