package domain

import (
	"strconv"
	"strings"
)

// SearchResult is a single title returned by a catalog search.
type SearchResult struct {
	ImdbID string `json:"imdbID"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	Poster string `json:"poster"`
}

// MovieDetail is the full catalog record for one title. Fields are kept as
// delivered by the catalog; numeric views are derived on demand.
type MovieDetail struct {
	ImdbID     string `json:"imdbID"`
	Title      string `json:"title"`
	Year       string `json:"year"`
	Released   string `json:"released"`
	Runtime    string `json:"runtime"`
	Poster     string `json:"poster"`
	ImdbRating string `json:"imdbRating"`
	Plot       string `json:"plot"`
	Actors     string `json:"actors"`
	Director   string `json:"director"`
	Genre      string `json:"genre"`
}

// RuntimeMinutes returns the numeric runtime of the record.
func (m MovieDetail) RuntimeMinutes() int {
	return ParseRuntime(m.Runtime)
}

// Rating returns the numeric catalog rating of the record.
func (m MovieDetail) Rating() float64 {
	return ParseRating(m.ImdbRating)
}

// ParseRuntime reads the leading number of a runtime such as "148 min".
// Values without a leading number ("N/A") yield 0.
func ParseRuntime(raw string) int {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil || minutes < 0 {
		return 0
	}
	return minutes
}

// ParseRating reads a catalog rating such as "8.8". Unknown ratings yield 0.
func ParseRating(raw string) float64 {
	rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || rating < 0 {
		return 0
	}
	return rating
}
