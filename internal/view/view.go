// Package view turns application state into the page model served to
// clients. Every function here is pure.
package view

import (
	"fmt"
	"strconv"

	"github.com/Clark-Hu/popcorn/internal/details"
	"github.com/Clark-Hu/popcorn/internal/domain"
	"github.com/Clark-Hu/popcorn/internal/search"
)

// Logo is the application name shown in the navigation bar.
const Logo = "usePopcorn"

// Input is everything the page is rendered from.
type Input struct {
	Title    string
	Search   search.Result
	Details  details.State
	Watched  []domain.WatchedEntry
	Panes    Panes
	MaxStars int
}

// Panes holds the open/closed toggle of each box.
type Panes struct {
	Results bool `json:"results"`
	Watched bool `json:"watched"`
}

// Page is the full page model.
type Page struct {
	Title   string     `json:"title"`
	NavBar  NavBar     `json:"navBar"`
	Results ResultsBox `json:"results"`
	Watched WatchedBox `json:"watched"`
}

// NavBar shows the logo, the search input and the result count.
type NavBar struct {
	Logo       string `json:"logo"`
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
}

// ResultsBox is the left box. Exactly one of Loader, Error and Movies is set
// while the box is open.
type ResultsBox struct {
	Open   bool        `json:"open"`
	Loader bool        `json:"loader,omitempty"`
	Error  string      `json:"error,omitempty"`
	Movies []MovieItem `json:"movies,omitempty"`
}

// MovieItem is one row of the result list.
type MovieItem struct {
	ImdbID    string `json:"imdbID"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	Poster    string `json:"poster"`
	PosterAlt string `json:"posterAlt"`
	Selected  bool   `json:"selected"`
}

// WatchedBox is the right box: either the detail view or the watched summary
// and list.
type WatchedBox struct {
	Open    bool          `json:"open"`
	Details *Details      `json:"details,omitempty"`
	Summary *Summary      `json:"summary,omitempty"`
	List    []WatchedItem `json:"list,omitempty"`
}

// Details is the detail view of the selected movie.
type Details struct {
	ImdbID       string         `json:"imdbID"`
	Loader       bool           `json:"loader,omitempty"`
	Error        string         `json:"error,omitempty"`
	Title        string         `json:"title,omitempty"`
	Poster       string         `json:"poster,omitempty"`
	PosterAlt    string         `json:"posterAlt,omitempty"`
	Overview     string         `json:"overview,omitempty"`
	Genre        string         `json:"genre,omitempty"`
	ImdbRating   string         `json:"imdbRating,omitempty"`
	YourRating   int            `json:"yourRating,omitempty"`
	Rating       *RatingControl `json:"rating,omitempty"`
	AlreadyRated string         `json:"alreadyRated,omitempty"`
	Plot         string         `json:"plot,omitempty"`
	Actors       string         `json:"actors,omitempty"`
	Director     string         `json:"director,omitempty"`
}

// RatingControl is the star rating widget with its add button.
type RatingControl struct {
	MaxRating     int  `json:"maxRating"`
	Value         int  `json:"value"`
	ShowAddButton bool `json:"showAddButton"`
}

// Summary is the watched-list statistics block.
type Summary struct {
	Movies        string `json:"movies"`
	AvgImdbRating string `json:"avgImdbRating"`
	AvgUserRating string `json:"avgUserRating"`
	AvgRuntime    string `json:"avgRuntime"`
}

// WatchedItem is one row of the watched list.
type WatchedItem struct {
	ImdbID     string  `json:"imdbID"`
	Title      string  `json:"title"`
	Poster     string  `json:"poster"`
	PosterAlt  string  `json:"posterAlt"`
	ImdbRating float64 `json:"imdbRating"`
	UserRating int     `json:"userRating"`
	Runtime    string  `json:"runtime"`
}

// Render builds the page model.
func Render(in Input) Page {
	return Page{
		Title: in.Title,
		NavBar: NavBar{
			Logo:       Logo,
			Query:      in.Search.Query,
			NumResults: len(in.Search.Movies),
		},
		Results: renderResults(in),
		Watched: renderWatched(in),
	}
}

func renderResults(in Input) ResultsBox {
	box := ResultsBox{Open: in.Panes.Results}
	if !box.Open {
		return box
	}
	switch {
	case in.Search.IsLoading:
		box.Loader = true
	case in.Search.Error != "":
		box.Error = in.Search.Error
	default:
		box.Movies = MovieList(in.Search.Movies, in.Details.ID)
	}
	return box
}

// MovieList renders the search results.
func MovieList(movies []domain.SearchResult, selectedID string) []MovieItem {
	items := make([]MovieItem, 0, len(movies))
	for _, m := range movies {
		items = append(items, MovieItem{
			ImdbID:    m.ImdbID,
			Title:     m.Title,
			Year:      m.Year,
			Poster:    m.Poster,
			PosterAlt: fmt.Sprintf("%s poster", m.Title),
			Selected:  m.ImdbID == selectedID,
		})
	}
	return items
}

func renderWatched(in Input) WatchedBox {
	box := WatchedBox{Open: in.Panes.Watched}
	if !box.Open {
		return box
	}
	if in.Details.Open() {
		box.Details = DetailView(in.Details, in.Watched, in.MaxStars)
		return box
	}
	summary := WatchedSummary(in.Watched)
	box.Summary = &summary
	box.List = WatchedList(in.Watched)
	return box
}

// DetailView renders the selected movie. Watched entries decide whether the
// rating control or the existing rating is shown.
func DetailView(st details.State, watched []domain.WatchedEntry, maxStars int) *Details {
	d := &Details{ImdbID: st.ID}
	if st.IsLoading {
		d.Loader = true
		return d
	}
	if st.Error != "" {
		d.Error = st.Error
		return d
	}
	if st.Movie != nil {
		m := st.Movie
		d.Title = m.Title
		d.Poster = m.Poster
		d.PosterAlt = fmt.Sprintf("Poster of %s movie", m.Title)
		d.Overview = fmt.Sprintf("%s • %s", m.Released, m.Runtime)
		d.Genre = m.Genre
		d.ImdbRating = m.ImdbRating
		d.Plot = m.Plot
		d.Actors = m.Actors
		d.Director = m.Director
	}

	if entry, ok := domain.FindWatched(watched, st.ID); ok {
		d.YourRating = entry.UserRating
		d.AlreadyRated = fmt.Sprintf("You already rated this movie with %d", entry.UserRating)
		return d
	}
	if maxStars <= 0 {
		maxStars = domain.MaxUserRating
	}
	d.Rating = &RatingControl{
		MaxRating:     maxStars,
		Value:         st.UserRating,
		ShowAddButton: st.UserRating > 0,
	}
	return d
}

// WatchedSummary renders the statistics block.
func WatchedSummary(watched []domain.WatchedEntry) Summary {
	s := domain.Summarize(watched)
	return Summary{
		Movies:        fmt.Sprintf("%d movies", s.Count),
		AvgImdbRating: formatAverage(s.AvgImdbRating),
		AvgUserRating: formatAverage(s.AvgUserRating),
		AvgRuntime:    fmt.Sprintf("%s min", formatAverage(s.AvgRuntime)),
	}
}

// WatchedList renders the watched entries in stored order.
func WatchedList(watched []domain.WatchedEntry) []WatchedItem {
	items := make([]WatchedItem, 0, len(watched))
	for _, w := range watched {
		items = append(items, WatchedItem{
			ImdbID:     w.ImdbID,
			Title:      w.Title,
			Poster:     w.Poster,
			PosterAlt:  fmt.Sprintf("%s poster", w.Title),
			ImdbRating: w.ImdbRating,
			UserRating: w.UserRating,
			Runtime:    fmt.Sprintf("%d min", w.Runtime),
		})
	}
	return items
}

// formatAverage prints an average without a trailing ".0".
func formatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
