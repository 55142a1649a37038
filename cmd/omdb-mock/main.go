package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// movieEntry mirrors the OMDb detail payload.
type movieEntry struct {
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
	Response   string `json:"Response"`
}

type searchItem struct {
	ImdbID string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Poster string `json:"Poster"`
}

type searchPayload struct {
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
}

type errorPayload struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "cmd/omdb-mock/movies.json", "path to mock data file")
		apiKey  = flag.String("apikey", "", "require this api key when set")
		logReqs = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	file, err := os.ReadFile(*data)
	if err != nil {
		logger.Error("read mock data", slog.String("error", err.Error()))
		os.Exit(1)
	}
	var movies []movieEntry
	if err := json.Unmarshal(file, &movies); err != nil {
		logger.Error("parse mock data", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := chi.NewRouter()
	if *logReqs {
		r.Use(middleware.Logger)
	}
	r.Mount("/", newHandler(movies, *apiKey))

	addr := ":" + *port
	logger.Info("mock omdb listening", slog.String("addr", addr), slog.Int("movies", len(movies)))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newHandler answers OMDb-style "?s=" searches and "?i=" lookups from movies.
func newHandler(movies []movieEntry, apiKey string) http.Handler {
	byID := make(map[string]movieEntry, len(movies))
	for _, m := range movies {
		m.Response = "True"
		byID[m.ImdbID] = m
	}

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if apiKey != "" && q.Get("apikey") != apiKey {
			writeJSON(w, http.StatusUnauthorized, errorPayload{Response: "False", Error: "Invalid API key!"})
			return
		}

		if id := q.Get("i"); id != "" {
			m, ok := byID[id]
			if !ok {
				writeJSON(w, http.StatusOK, errorPayload{Response: "False", Error: "Incorrect IMDb ID."})
				return
			}
			writeJSON(w, http.StatusOK, m)
			return
		}

		term := strings.ToLower(strings.TrimSpace(q.Get("s")))
		if term == "" {
			writeJSON(w, http.StatusOK, errorPayload{Response: "False", Error: "Incorrect IMDb ID."})
			return
		}
		var hits []searchItem
		for _, m := range movies {
			if strings.Contains(strings.ToLower(m.Title), term) {
				hits = append(hits, searchItem{ImdbID: m.ImdbID, Title: m.Title, Year: m.Year, Poster: m.Poster})
			}
		}
		if len(hits) == 0 {
			writeJSON(w, http.StatusOK, errorPayload{Response: "False", Error: "Movie not found!"})
			return
		}
		writeJSON(w, http.StatusOK, searchPayload{
			Search:       hits,
			TotalResults: strconv.Itoa(len(hits)),
			Response:     "True",
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
