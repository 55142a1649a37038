package view

import (
	"testing"

	"github.com/Clark-Hu/popcorn/internal/details"
	"github.com/Clark-Hu/popcorn/internal/domain"
	"github.com/Clark-Hu/popcorn/internal/search"
)

func openPanes() Panes {
	return Panes{Results: true, Watched: true}
}

func TestRender_ResultsBoxStates(t *testing.T) {
	results := []domain.SearchResult{{ImdbID: "tt1375666", Title: "Inception", Year: "2010"}}

	tests := []struct {
		name   string
		search search.Result
		check  func(ResultsBox) bool
	}{
		{"loading", search.Result{IsLoading: true, Movies: results}, func(b ResultsBox) bool { return b.Loader && b.Error == "" && b.Movies == nil }},
		{"error", search.Result{Error: "Movies not found"}, func(b ResultsBox) bool { return !b.Loader && b.Error == "Movies not found" && b.Movies == nil }},
		{"list", search.Result{Movies: results}, func(b ResultsBox) bool { return len(b.Movies) == 1 && b.Movies[0].PosterAlt == "Inception poster" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Render(Input{Search: tt.search, Panes: openPanes()})
			if !tt.check(page.Results) {
				t.Fatalf("results box = %+v", page.Results)
			}
		})
	}
}

func TestRender_NavBarCountsResults(t *testing.T) {
	page := Render(Input{
		Title:  "usePopcorn",
		Search: search.Result{Query: "matrix", Movies: make([]domain.SearchResult, 3)},
		Panes:  openPanes(),
	})
	if page.NavBar.NumResults != 3 || page.NavBar.Query != "matrix" || page.NavBar.Logo != Logo {
		t.Fatalf("navbar = %+v", page.NavBar)
	}
}

func TestRender_ClosedBoxesHideContent(t *testing.T) {
	page := Render(Input{
		Search:  search.Result{Movies: []domain.SearchResult{{ImdbID: "a"}}},
		Watched: []domain.WatchedEntry{{ImdbID: "b"}},
	})
	if page.Results.Movies != nil || page.Watched.Summary != nil || page.Watched.List != nil {
		t.Fatalf("closed boxes rendered content: %+v", page)
	}
}

func TestDetailView_RatingControl(t *testing.T) {
	movie := &domain.MovieDetail{ImdbID: "tt1375666", Title: "Inception", Released: "16 Jul 2010", Runtime: "148 min"}

	d := DetailView(details.State{ID: "tt1375666", Movie: movie}, nil, 10)
	if d.Rating == nil || d.Rating.ShowAddButton || d.Rating.MaxRating != 10 {
		t.Fatalf("rating control = %+v", d.Rating)
	}
	if d.Overview != "16 Jul 2010 • 148 min" || d.PosterAlt != "Poster of Inception movie" {
		t.Fatalf("detail = %+v", d)
	}

	d = DetailView(details.State{ID: "tt1375666", Movie: movie, UserRating: 7}, nil, 10)
	if d.Rating == nil || !d.Rating.ShowAddButton || d.Rating.Value != 7 {
		t.Fatalf("rating control with rating = %+v", d.Rating)
	}

	watched := []domain.WatchedEntry{{ImdbID: "tt1375666", UserRating: 9}}
	d = DetailView(details.State{ID: "tt1375666", Movie: movie}, watched, 10)
	if d.Rating != nil || d.YourRating != 9 || d.AlreadyRated != "You already rated this movie with 9" {
		t.Fatalf("already watched detail = %+v", d)
	}
}

func TestDetailView_LoadingAndError(t *testing.T) {
	if d := DetailView(details.State{ID: "x", IsLoading: true}, nil, 10); !d.Loader || d.Rating != nil {
		t.Fatalf("loading detail = %+v", d)
	}
	if d := DetailView(details.State{ID: "x", Error: "boom"}, nil, 10); d.Error != "boom" || d.Rating != nil {
		t.Fatalf("error detail = %+v", d)
	}
}

func TestRender_WatchedBoxSwitchesOnSelection(t *testing.T) {
	watched := []domain.WatchedEntry{
		{ImdbID: "tt1375666", Title: "Inception", Runtime: 148, ImdbRating: 8.8, UserRating: 10},
		{ImdbID: "tt0088763", Title: "Back to the Future", Runtime: 116, ImdbRating: 8.5, UserRating: 9},
	}

	page := Render(Input{Watched: watched, Panes: openPanes()})
	if page.Watched.Details != nil || page.Watched.Summary == nil || len(page.Watched.List) != 2 {
		t.Fatalf("watched box = %+v", page.Watched)
	}
	s := page.Watched.Summary
	if s.Movies != "2 movies" || s.AvgUserRating != "9.5" || s.AvgRuntime != "132 min" || s.AvgImdbRating != "8.7" {
		t.Fatalf("summary = %+v", s)
	}
	if page.Watched.List[1].Runtime != "116 min" {
		t.Fatalf("list = %+v", page.Watched.List)
	}

	page = Render(Input{Watched: watched, Details: details.State{ID: "tt0133093", IsLoading: true}, Panes: openPanes()})
	if page.Watched.Details == nil || page.Watched.Summary != nil {
		t.Fatalf("watched box with selection = %+v", page.Watched)
	}
}

func TestWatchedSummary_Empty(t *testing.T) {
	s := WatchedSummary(nil)
	if s.Movies != "0 movies" || s.AvgImdbRating != "0" || s.AvgUserRating != "0" || s.AvgRuntime != "0 min" {
		t.Fatalf("empty summary = %+v", s)
	}
}
