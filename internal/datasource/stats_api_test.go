package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/game-predictor/internal/models"
)

const testAPIKey = "test-key"

func testHTTPClient() *RateLimitedHTTPClient {
	return NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      2 * time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 3,
	}, nil)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *StatsAPIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewStatsAPIClient(testHTTPClient(), srv.URL+"/", testAPIKey, nil)
	require.NoError(t, err)
	return client
}

func TestNewStatsAPIClientRequiresKey(t *testing.T) {
	_, err := NewStatsAPIClient(testHTTPClient(), "http://localhost", "", nil)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestFetchStandings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/standings", r.URL.Path)
		assert.Equal(t, "2023", r.URL.Query().Get("season"))
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":[
			{"team":{"abbreviation":"bos","full_name":"Boston Celtics"},"wins":30,"losses":10,"points_per_game":118.5,"opp_points_per_game":110.2},
			{"team":{"abbreviation":"LAL","full_name":"Los Angeles Lakers"},"wins":20,"losses":20,"points_per_game":115.0,"opp_points_per_game":116.1},
			{"team":{"abbreviation":"","full_name":"Broken"},"wins":1,"losses":1}
		]}`)
	})

	records, err := client.FetchStandings(context.Background(), 2023)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "BOS", records[0].Abbreviation)
	assert.Equal(t, "Boston Celtics", records[0].Name)
	assert.Equal(t, 40, records[0].GamesPlayed())
	assert.Equal(t, 110.2, records[0].PointsAllowedPerGame)
}

func TestFetchSchedulePaginatesAndConverts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "2024-01-10", r.URL.Query().Get("dates[]"))

		if r.URL.Query().Get("cursor") == "" {
			fmt.Fprint(w, `{"data":[{
				"id":1001,"date":"2024-01-10","datetime":"2024-01-11T00:30:00Z",
				"home_team":{"abbreviation":"BOS"},"visitor_team":{"abbreviation":"LAL"},
				"home_team_back_to_back":false,"visitor_team_back_to_back":true,
				"home_team_last_game_date":"2024-01-07","visitor_team_last_game_date":"2024-01-09",
				"odds":{"home":"-150","away":"2.30"}
			}],"meta":{"next_cursor":7}}`)
			return
		}

		assert.Equal(t, "7", r.URL.Query().Get("cursor"))
		fmt.Fprint(w, `{"data":[
			{"id":1002,"date":"2024-01-10","home_team":{"abbreviation":"NYK"},"visitor_team":{"abbreviation":"MIA"},"odds":{"home":"junk"}},
			{"id":1003,"date":"2024-01-10","home_team":{"abbreviation":"DEN"},"visitor_team":{"abbreviation":"DEN"}}
		],"meta":{"next_cursor":0}}`)
	})

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	games, err := client.FetchSchedule(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, games, 2)

	first := games[0]
	assert.Equal(t, "1001", first.GameID)
	assert.Equal(t, "BOS", first.HomeTeam)
	assert.Equal(t, "LAL", first.AwayTeam)
	assert.Equal(t, "00:30", first.GameTime())
	assert.True(t, first.AwayOnBackToBack)
	require.NotNil(t, first.HomeLastGameDate)
	assert.Equal(t, 7, first.HomeLastGameDate.Day())
	require.NotNil(t, first.HomeMoneyline)
	assert.Equal(t, -150, *first.HomeMoneyline)
	require.NotNil(t, first.AwayMoneyline)
	assert.Equal(t, 130, *first.AwayMoneyline)

	second := games[1]
	assert.Equal(t, "1002", second.GameID)
	assert.Nil(t, second.HomeMoneyline)
	assert.Nil(t, second.TipOff)
	assert.False(t, second.HasMarket())
}

func TestFetchAuthenticationFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchStandings(context.Background(), 2023)
	require.Error(t, err)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeAuthenticationFailed, dsErr.Code)
	assert.True(t, errors.Is(err, models.ErrUpstreamFetch))
}

func TestFetchInvalidPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})

	_, err := client.FetchSchedule(context.Background(), time.Now())

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeInvalidData, dsErr.Code)
}

func TestFetchClientError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad season")
	})

	_, err := client.FetchStandings(context.Background(), 1800)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeServerError, dsErr.Code)
	assert.Contains(t, dsErr.Message, "bad season")
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{
		Timeout:           time.Second,
		MaxRetries:        3,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      2 * time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 3,
	}
	client := NewRateLimitedHTTPClient(cfg, nil)

	resp, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClientCircuitBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := testHTTPClient()
	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), addr)
		require.Error(t, err)
	}
	assert.True(t, client.IsOpen())

	_, err := client.Get(context.Background(), addr)
	assert.True(t, errors.Is(err, ErrCircuitOpen))

	client.Reset()
	assert.False(t, client.IsOpen())
}

func TestSeasonFor(t *testing.T) {
	assert.Equal(t, 2023, SeasonFor(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, SeasonFor(time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2023, SeasonFor(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
}
