package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Clark-Hu/popcorn/internal/domain"
)

// Client defines the contract for querying the movie catalog.
type Client interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
	Details(ctx context.Context, id string) (domain.MovieDetail, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient constructs a new HTTP-backed catalog client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse omdb url: %q is not absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Search looks titles up by free text.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	var payload searchResponse
	if err := c.get(ctx, "s", query, &payload); err != nil {
		return nil, err
	}
	if payload.Response == "False" {
		return nil, ErrNotFound
	}
	return convertSearch(payload)
}

// Details fetches the full record for an identifier.
func (c *HTTPClient) Details(ctx context.Context, id string) (domain.MovieDetail, error) {
	var payload detailResponse
	if err := c.get(ctx, "i", id, &payload); err != nil {
		return domain.MovieDetail{}, err
	}
	if payload.Response == "False" {
		return domain.MovieDetail{}, ErrNotFound
	}
	return convertDetail(id, payload)
}

func (c *HTTPClient) get(ctx context.Context, param, value string, dst interface{}) error {
	endpoint := *c.baseURL
	q := endpoint.Query()
	q.Set("apikey", c.apiKey)
	q.Set(param, value)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("omdb: unexpected status", slog.Int("status", resp.StatusCode), slog.String(param, value))
		return &TransportError{Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		return &ParseError{Err: err}
	}
	return nil
}

type searchResponse struct {
	Search   []searchItem `json:"Search"`
	Response string       `json:"Response"`
	Error    string       `json:"Error"`
}

type searchItem struct {
	ImdbID string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Poster string `json:"Poster"`
}

type detailResponse struct {
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
	Error      string `json:"Error"`
}

func convertSearch(payload searchResponse) ([]domain.SearchResult, error) {
	if payload.Search == nil {
		return nil, &ParseError{Field: "Search", Err: errors.New("missing result list")}
	}
	results := make([]domain.SearchResult, 0, len(payload.Search))
	for i, item := range payload.Search {
		if item.ImdbID == "" {
			return nil, &ParseError{Field: fmt.Sprintf("Search[%d].imdbID", i), Err: errors.New("required")}
		}
		if item.Title == "" {
			return nil, &ParseError{Field: fmt.Sprintf("Search[%d].Title", i), Err: errors.New("required")}
		}
		results = append(results, domain.SearchResult{
			ImdbID: item.ImdbID,
			Title:  item.Title,
			Year:   item.Year,
			Poster: item.Poster,
		})
	}
	return results, nil
}

func convertDetail(requestedID string, payload detailResponse) (domain.MovieDetail, error) {
	if payload.Title == "" {
		return domain.MovieDetail{}, &ParseError{Field: "Title", Err: errors.New("required")}
	}
	id := payload.ImdbID
	if id == "" {
		id = requestedID
	}
	return domain.MovieDetail{
		ImdbID:     id,
		Title:      payload.Title,
		Year:       payload.Year,
		Released:   payload.Released,
		Runtime:    payload.Runtime,
		Poster:     payload.Poster,
		ImdbRating: payload.ImdbRating,
		Plot:       payload.Plot,
		Actors:     payload.Actors,
		Director:   payload.Director,
		Genre:      payload.Genre,
	}, nil
}
