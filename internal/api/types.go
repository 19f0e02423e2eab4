package api

import "time"

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// SeriesSummary condenses a series window for API consumers.
type SeriesSummary struct {
	Last float64 `json:"last"`
	Avg  float64 `json:"avg"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type SeriesResponse struct {
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Kind     string         `json:"kind"`
	Capacity int            `json:"capacity"`
	Values   []float64      `json:"values"`
	Summary  *SeriesSummary `json:"summary,omitempty"`
}

type ListSeriesResponse struct {
	Series []SeriesResponse `json:"series"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
