package models

import "time"

// WeatherSnapshot holds the most recent weather reading for a city, one row
// per city, refreshed by the weather sync job.
type WeatherSnapshot struct {
	City        string    `json:"city"`
	TempC       float64   `json:"temp_c"`
	Description string    `json:"description"`
	Humidity    int       `json:"humidity"`
	FetchedAt   time.Time `json:"fetched_at"`
}
