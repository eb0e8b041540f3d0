package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gwstat/fplboard/internal/domain"
)

// OverallLeagueID is the upstream league holding every roster, used to read
// the global leader's total.
const OverallLeagueID domain.LeagueID = 314

// Client is the REST client for the fantasy game's public API. All endpoints
// are unauthenticated read-only JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
//
// baseURL is the API root, e.g. "https://fantasy.premierleague.com/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SeasonSnapshot fetches the season-wide static feed.
func (c *Client) SeasonSnapshot(ctx context.Context) (*SeasonSnapshot, error) {
	body, err := c.doGet(ctx, "/bootstrap-static/")
	if err != nil {
		return nil, fmt.Errorf("fpl: get season snapshot: %w", err)
	}

	var snap SeasonSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("fpl: decode season snapshot: %w", err)
	}

	return &snap, nil
}

// RoundScores fetches the live scoring feed for one round.
func (c *Client) RoundScores(ctx context.Context, round int) (domain.RoundScoreRecord, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/event/%d/live/", round))
	if err != nil {
		return domain.RoundScoreRecord{}, fmt.Errorf("fpl: get round %d scores: %w", round, err)
	}

	var scores APIRoundScores
	if err := json.Unmarshal(body, &scores); err != nil {
		return domain.RoundScoreRecord{}, fmt.Errorf("fpl: decode round %d scores: %w", round, err)
	}

	return scores.ToDomainRecord(round), nil
}

// Selections fetches a roster's picks for one round.
func (c *Client) Selections(ctx context.Context, roster domain.RosterID, round int) (domain.SelectionRecord, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/entry/%d/event/%d/picks/", roster, round))
	if err != nil {
		return domain.SelectionRecord{}, fmt.Errorf("fpl: get picks roster=%d round=%d: %w", roster, round, err)
	}

	var picks APIPicks
	if err := json.Unmarshal(body, &picks); err != nil {
		return domain.SelectionRecord{}, fmt.Errorf("fpl: decode picks roster=%d round=%d: %w", roster, round, err)
	}

	return picks.ToDomainRecord(roster, round), nil
}

// Standings fetches the first page of a classic league's standings.
func (c *Client) Standings(ctx context.Context, league domain.LeagueID) ([]domain.LeagueEntry, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/leagues-classic/%d/standings/", league))
	if err != nil {
		return nil, fmt.Errorf("fpl: get standings league=%d: %w", league, err)
	}

	var standings APIStandings
	if err := json.Unmarshal(body, &standings); err != nil {
		return nil, fmt.Errorf("fpl: decode standings league=%d: %w", league, err)
	}

	entries := make([]domain.LeagueEntry, 0, len(standings.Standings.Results))
	for i := range standings.Standings.Results {
		entries = append(entries, standings.Standings.Results[i].ToDomainEntry())
	}

	return entries, nil
}

// OverallLeaderTotal returns the season total of the roster ranked first in
// the overall league.
func (c *Client) OverallLeaderTotal(ctx context.Context) (int, error) {
	entries, err := c.Standings(ctx, OverallLeagueID)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.Rank == 1 {
			return e.TotalPoints, nil
		}
	}
	return 0, fmt.Errorf("fpl: overall leader: %w", domain.ErrNotFound)
}

// Profile fetches a roster's public profile.
func (c *Client) Profile(ctx context.Context, roster domain.RosterID) (domain.RosterProfile, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/entry/%d/", roster))
	if err != nil {
		return domain.RosterProfile{}, fmt.Errorf("fpl: get profile roster=%d: %w", roster, err)
	}

	var entry APIEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return domain.RosterProfile{}, fmt.Errorf("fpl: decode profile roster=%d: %w", roster, err)
	}

	return entry.ToDomainProfile(), nil
}

// History fetches a roster's season history aggregates.
func (c *Client) History(ctx context.Context, roster domain.RosterID) (domain.RosterHistory, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("/entry/%d/history/", roster))
	if err != nil {
		return domain.RosterHistory{}, fmt.Errorf("fpl: get history roster=%d: %w", roster, err)
	}

	var hist APIEntryHistory
	if err := json.Unmarshal(body, &hist); err != nil {
		return domain.RosterHistory{}, fmt.Errorf("fpl: decode history roster=%d: %w", roster, err)
	}

	return hist.ToDomainHistory(), nil
}

// EventStatus fetches the status feed for the current round.
func (c *Client) EventStatus(ctx context.Context) (*APIEventStatus, error) {
	body, err := c.doGet(ctx, "/event-status/")
	if err != nil {
		return nil, fmt.Errorf("fpl: get event status: %w", err)
	}

	var status APIEventStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("fpl: decode event status: %w", err)
	}

	return &status, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fplboard/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusServiceUnavailable:
		// The upstream serves 503 while the game is being updated.
		return fmt.Errorf("%w: %s", domain.ErrMaintenance, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
