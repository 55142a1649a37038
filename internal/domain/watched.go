package domain

import (
	"errors"
	"fmt"
	"math"
)

// Bounds of a user-assigned rating.
const (
	MinUserRating = 1
	MaxUserRating = 10
)

// ErrInvalidRating indicates a user rating outside MinUserRating..MaxUserRating.
var ErrInvalidRating = errors.New("domain: rating must be between 1 and 10")

// WatchedEntry is a rated title in the watched list. The JSON shape is the
// persisted format of the list.
type WatchedEntry struct {
	ImdbID     string  `json:"imdbID"`
	Title      string  `json:"title"`
	Year       string  `json:"year"`
	Poster     string  `json:"poster"`
	Runtime    int     `json:"runtime"`
	ImdbRating float64 `json:"imdbRating"`
	UserRating int     `json:"userRating"`
}

// NewWatchedEntry converts a detail record and a user rating into a watched entry.
func NewWatchedEntry(detail MovieDetail, userRating int) (WatchedEntry, error) {
	if userRating < MinUserRating || userRating > MaxUserRating {
		return WatchedEntry{}, fmt.Errorf("%w: got %d", ErrInvalidRating, userRating)
	}
	return WatchedEntry{
		ImdbID:     detail.ImdbID,
		Title:      detail.Title,
		Year:       detail.Year,
		Poster:     detail.Poster,
		Runtime:    detail.RuntimeMinutes(),
		ImdbRating: detail.Rating(),
		UserRating: userRating,
	}, nil
}

// AppendWatched returns a new list with entry appended. Duplicates are not
// filtered here.
func AppendWatched(list []WatchedEntry, entry WatchedEntry) []WatchedEntry {
	out := make([]WatchedEntry, 0, len(list)+1)
	out = append(out, list...)
	return append(out, entry)
}

// RemoveWatched returns a new list without any entry matching id, keeping the
// order of the rest.
func RemoveWatched(list []WatchedEntry, id string) []WatchedEntry {
	out := make([]WatchedEntry, 0, len(list))
	for _, entry := range list {
		if entry.ImdbID != id {
			out = append(out, entry)
		}
	}
	return out
}

// FindWatched returns the first entry matching id.
func FindWatched(list []WatchedEntry, id string) (WatchedEntry, bool) {
	for _, entry := range list {
		if entry.ImdbID == id {
			return entry, true
		}
	}
	return WatchedEntry{}, false
}

// Summary aggregates the watched list.
type Summary struct {
	Count         int     `json:"count"`
	AvgImdbRating float64 `json:"avgImdbRating"`
	AvgUserRating float64 `json:"avgUserRating"`
	AvgRuntime    float64 `json:"avgRuntime"`
}

// Summarize computes the aggregate statistics of a watched list.
func Summarize(list []WatchedEntry) Summary {
	imdb := make([]float64, 0, len(list))
	user := make([]float64, 0, len(list))
	runtime := make([]float64, 0, len(list))
	for _, entry := range list {
		imdb = append(imdb, entry.ImdbRating)
		user = append(user, float64(entry.UserRating))
		runtime = append(runtime, float64(entry.Runtime))
	}
	return Summary{
		Count:         len(list),
		AvgImdbRating: Average(imdb),
		AvgUserRating: Average(user),
		AvgRuntime:    Average(runtime),
	}
}

// Average accumulates value/len one element at a time, rounding the running
// total to one decimal after each step. An empty slice averages to 0.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := float64(len(values))
	var acc float64
	for _, v := range values {
		acc = roundToOneDecimal(acc + v/n)
	}
	return acc
}

func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10.0
}
