package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bcart01v/atlas-cinema-guru/internal/domain"
	"github.com/bcart01v/atlas-cinema-guru/pkg/httpclient"
	"github.com/bcart01v/atlas-cinema-guru/pkg/middleware"
)

const serviceName = "cinema-guru"

// Client calls the cinema guru HTTP API on behalf of one signed-in user.
// Reads are retried by the underlying client; toggles are sent once.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// New creates a client for baseURL authenticating with a bearer token.
func New(baseURL, token string, cfg httpclient.Config, logger *slog.Logger) *Client {
	cfg.Header = http.Header{
		"Accept":        {"application/json"},
		"Authorization": {"Bearer " + token},
	}
	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig(serviceName),
		logger,
	)
	return &Client{
		http:    cb,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type listResponse struct {
	Favorites  []domain.Movie `json:"favorites"`
	WatchLater []domain.Movie `json:"watchLater"`
	Titles     []domain.Movie `json:"titles"`
	TotalPages int            `json:"totalPages"`
}

type toggleResponse struct {
	MovieID    string `json:"movieId"`
	Favorited  *bool  `json:"favorited"`
	WatchLater *bool  `json:"watchLater"`
}

// List fetches one page of the user's favorites or watch-later list.
func (c *Client) List(ctx context.Context, kind domain.ListKind, q domain.ListQuery) (domain.Page[domain.Movie], error) {
	var body listResponse
	if err := c.do(ctx, http.MethodGet, listPath(kind)+"?"+encodeQuery(q), &body); err != nil {
		return domain.Page[domain.Movie]{}, err
	}
	items := body.Favorites
	if kind == domain.KindWatchLater {
		items = body.WatchLater
	}
	return domain.NewPage(items, q.Page, body.TotalPages), nil
}

// Toggle flips membership of movieID in the list.
func (c *Client) Toggle(ctx context.Context, kind domain.ListKind, movieID string) (domain.ToggleResult, error) {
	return c.write(ctx, http.MethodPost, kind, movieID)
}

// Remove takes movieID out of the list if present.
func (c *Client) Remove(ctx context.Context, kind domain.ListKind, movieID string) (domain.ToggleResult, error) {
	return c.write(ctx, http.MethodDelete, kind, movieID)
}

// Titles fetches one page of the catalog.
func (c *Client) Titles(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Movie], error) {
	var body listResponse
	if err := c.do(ctx, http.MethodGet, "/api/titles?"+encodeQuery(q), &body); err != nil {
		return domain.Page[domain.Movie]{}, err
	}
	return domain.NewPage(body.Titles, q.Page, body.TotalPages), nil
}

func (c *Client) Genres(ctx context.Context) ([]string, error) {
	var body struct {
		Genres []string `json:"genres"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/genres", &body); err != nil {
		return nil, err
	}
	return body.Genres, nil
}

// Activities fetches one page of the user's activity feed.
func (c *Client) Activities(ctx context.Context, page int) (domain.Page[domain.Activity], error) {
	var body struct {
		Activities []domain.Activity `json:"activities"`
		TotalPages int               `json:"totalPages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/activities?page="+strconv.Itoa(page), &body); err != nil {
		return domain.Page[domain.Activity]{}, err
	}
	return domain.NewPage(body.Activities, page, body.TotalPages), nil
}

func (c *Client) write(ctx context.Context, method string, kind domain.ListKind, movieID string) (domain.ToggleResult, error) {
	var body toggleResponse
	if err := c.do(ctx, method, listPath(kind)+"/"+url.PathEscape(movieID), &body); err != nil {
		return domain.ToggleResult{}, err
	}

	result := domain.ToggleResult{MovieID: body.MovieID, Kind: kind}
	switch {
	case kind == domain.KindWatchLater && body.WatchLater != nil:
		result.Active = *body.WatchLater
	case kind == domain.KindFavorites && body.Favorited != nil:
		result.Active = *body.Favorited
	default:
		return domain.ToggleResult{}, fmt.Errorf("%s: toggle response missing state for %s", serviceName, kind)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	resp, err := c.send(ctx, method, c.baseURL+path)
	if err != nil {
		return httpclient.TranslateError(err, serviceName)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if correlationID := resp.Header.Get(middleware.CorrelationHeader); correlationID != "" {
		c.logger.DebugContext(ctx, "api call",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("correlation_id", correlationID),
		)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, target string) (*http.Response, error) {
	switch method {
	case http.MethodPost:
		return c.http.Post(ctx, target, "", http.NoBody)
	case http.MethodDelete:
		return c.http.Delete(ctx, target)
	default:
		return c.http.Get(ctx, target)
	}
}

func listPath(kind domain.ListKind) string {
	if kind == domain.KindWatchLater {
		return "/api/watch-later"
	}
	return "/api/favorites"
}

// encodeQuery writes only the parameters that narrow the result, so the
// server applies its own defaults for the rest.
func encodeQuery(q domain.ListQuery) string {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if q.MinYear > 0 {
		v.Set("minYear", strconv.Itoa(q.MinYear))
	}
	if q.MaxYear > 0 {
		v.Set("maxYear", strconv.Itoa(q.MaxYear))
	}
	if q.Query != "" {
		v.Set("query", q.Query)
	}
	if len(q.Genres) > 0 {
		v.Set("genres", strings.Join(q.Genres, ","))
	}
	return v.Encode()
}
