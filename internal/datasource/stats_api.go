package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/game-predictor/internal/models"
	"github.com/yourusername/game-predictor/internal/odds"
)

const (
	statsAPISourceName = "stats_api"
	schedulePageSize   = 100
	maxSchedulePages   = 20
)

// StatsAPIClient implements StatsProvider against a JSON statistics API
type StatsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	validate   *validator.Validate
	logger     *logrus.Entry
}

type statsAPITeam struct {
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}

type statsAPIStanding struct {
	Team             statsAPITeam `json:"team"`
	Wins             int          `json:"wins"`
	Losses           int          `json:"losses"`
	PointsPerGame    float64      `json:"points_per_game"`
	OppPointsPerGame float64      `json:"opp_points_per_game"`
}

type statsAPIOdds struct {
	Home *string `json:"home"`
	Away *string `json:"away"`
}

type statsAPIGame struct {
	ID                      json.Number   `json:"id"`
	Date                    string        `json:"date"`
	DateTime                string        `json:"datetime"`
	HomeTeam                statsAPITeam  `json:"home_team"`
	VisitorTeam             statsAPITeam  `json:"visitor_team"`
	HomeTeamBackToBack      bool          `json:"home_team_back_to_back"`
	VisitorTeamBackToBack   bool          `json:"visitor_team_back_to_back"`
	HomeTeamLastGameDate    *string       `json:"home_team_last_game_date"`
	VisitorTeamLastGameDate *string       `json:"visitor_team_last_game_date"`
	Odds                    *statsAPIOdds `json:"odds"`
}

type statsAPIMeta struct {
	NextCursor int `json:"next_cursor"`
}

type standingsResponse struct {
	Data []statsAPIStanding `json:"data"`
}

type gamesResponse struct {
	Data []statsAPIGame `json:"data"`
	Meta statsAPIMeta   `json:"meta"`
}

// NewStatsAPIClient creates a new statistics API client. An empty API key is a
// configuration error.
func NewStatsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) (*StatsAPIClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("%w: HTTP client is required", models.ErrConfiguration)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: stats provider API key is required", models.ErrConfiguration)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &StatsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		validate:   validator.New(),
		logger:     logger.WithField("source", statsAPISourceName),
	}, nil
}

// Name returns the data source name
func (c *StatsAPIClient) Name() string {
	return statsAPISourceName
}

// FetchStandings retrieves every team's record for a season
func (c *StatsAPIClient) FetchStandings(ctx context.Context, season int) ([]models.TeamRecord, error) {
	endpoint := fmt.Sprintf("%s/standings?season=%d", c.baseURL, season)

	var body standingsResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, err
	}

	records := make([]models.TeamRecord, 0, len(body.Data))
	for _, s := range body.Data {
		record := models.TeamRecord{
			Abbreviation:         strings.ToUpper(s.Team.Abbreviation),
			Name:                 s.Team.FullName,
			Wins:                 s.Wins,
			Losses:               s.Losses,
			PointsPerGame:        s.PointsPerGame,
			PointsAllowedPerGame: s.OppPointsPerGame,
		}
		if err := c.validate.Struct(record); err != nil {
			c.logger.WithError(err).WithField("team", s.Team.Abbreviation).Warn("Dropping invalid standings row")
			continue
		}
		records = append(records, record)
	}

	c.logger.WithFields(logrus.Fields{"season": season, "teams": len(records)}).Debug("Fetched standings")
	return records, nil
}

// FetchSchedule retrieves the games scheduled on date, following pagination
func (c *StatsAPIClient) FetchSchedule(ctx context.Context, date time.Time) ([]models.ScheduledGame, error) {
	day := date.Format(models.GameDateLayout)
	var games []models.ScheduledGame

	cursor := 0
	for page := 0; page < maxSchedulePages; page++ {
		q := url.Values{}
		q.Set("dates[]", day)
		q.Set("per_page", strconv.Itoa(schedulePageSize))
		if cursor > 0 {
			q.Set("cursor", strconv.Itoa(cursor))
		}

		var body gamesResponse
		if err := c.getJSON(ctx, c.baseURL+"/games?"+q.Encode(), &body); err != nil {
			return nil, err
		}

		for i := range body.Data {
			game, err := c.convertGame(&body.Data[i], date)
			if err != nil {
				c.logger.WithError(err).WithField("game_id", body.Data[i].ID.String()).Warn("Dropping invalid game")
				continue
			}
			games = append(games, *game)
		}

		if body.Meta.NextCursor == 0 {
			break
		}
		cursor = body.Meta.NextCursor
	}

	c.logger.WithFields(logrus.Fields{"date": day, "games": len(games)}).Debug("Fetched schedule")
	return games, nil
}

func (c *StatsAPIClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewDataSourceError(statsAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(statsAPISourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(statsAPISourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(statsAPISourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(statsAPISourceName, ErrCodeNotFound, "endpoint not found", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(statsAPISourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(statsAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

// convertGame converts the API game format to a ScheduledGame
func (c *StatsAPIClient) convertGame(g *statsAPIGame, requested time.Time) (*models.ScheduledGame, error) {
	gameDate := time.Date(requested.Year(), requested.Month(), requested.Day(), 0, 0, 0, 0, time.UTC)
	if g.Date != "" {
		d, err := time.Parse(models.GameDateLayout, g.Date[:min(len(g.Date), len(models.GameDateLayout))])
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", g.Date, err)
		}
		gameDate = d
	}

	game := &models.ScheduledGame{
		GameID:           g.ID.String(),
		GameDate:         gameDate,
		HomeTeam:         strings.ToUpper(g.HomeTeam.Abbreviation),
		AwayTeam:         strings.ToUpper(g.VisitorTeam.Abbreviation),
		HomeOnBackToBack: g.HomeTeamBackToBack,
		AwayOnBackToBack: g.VisitorTeamBackToBack,
		HomeLastGameDate: parseOptionalDate(g.HomeTeamLastGameDate),
		AwayLastGameDate: parseOptionalDate(g.VisitorTeamLastGameDate),
	}

	if g.DateTime != "" {
		if tip, err := time.Parse(time.RFC3339, g.DateTime); err == nil {
			tip = tip.UTC()
			game.TipOff = &tip
		}
	}

	if g.Odds != nil {
		game.HomeMoneyline = c.parseMoneyline(g.Odds.Home, game.GameID)
		game.AwayMoneyline = c.parseMoneyline(g.Odds.Away, game.GameID)
	}

	if err := c.validate.Struct(game); err != nil {
		return nil, err
	}
	return game, nil
}

// parseMoneyline accepts American or decimal prices; bad prices are dropped
func (c *StatsAPIClient) parseMoneyline(raw *string, gameID string) *int {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	line, err := odds.ToAmerican(*raw)
	if err != nil {
		c.logger.WithError(err).WithField("game_id", gameID).Warn("Ignoring unparseable price")
		return nil
	}
	return &line
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || len(*s) < len(models.GameDateLayout) {
		return nil
	}
	d, err := time.Parse(models.GameDateLayout, (*s)[:len(models.GameDateLayout)])
	if err != nil {
		return nil
	}
	return &d
}
