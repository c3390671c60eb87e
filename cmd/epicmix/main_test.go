package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thde.io/epicmix"
)

func newTestClient(t *testing.T, api http.HandlerFunc) *epicmix.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"specific":{"tokenResponse":{"accessToken":"abc"}}}`))
	})
	mux.HandleFunc("/api", api)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	authURL, _ := url.Parse(srv.URL + "/auth")
	apiURL, _ := url.Parse(srv.URL + "/api")

	c, err := epicmix.New(context.Background(), "rider@example.com", "pw",
		epicmix.WithAuthURL(authURL),
		epicmix.WithAPIURL(apiURL),
		epicmix.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	return c
}

func TestRun_Lifetime(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"displayName":"Lifetime Stats","summaryStatId":1,"liftRides":2,
			"daysOnMountain":3,"verticalInFeet":100,"verticalInMeters":30.5,"mostVisitedResort":7,
			"updatedTimestampUtc":"2024-01-01T00:00:00Z"}}`))
	})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, "lifetime", nil, &out))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Lifetime Stats", got["displayName"])
	assert.InDelta(t, 30.5, got["verticalInMeters"], 0)
}

func TestRun_Lifts(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Query().Get("path")
		_, _ = w.Write([]byte(`{"data":[{"resortName":"Vail","liftName":"Gondola One","scanTime":"2024-01-01T09:00:00"}]}`))
	})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, "lifts", []string{"2024-01-01"}, &out))

	assert.Equal(t, "v3/LiftHistory/Rides?date=2024-01-01T00%3A00%3A00", gotPath)
	assert.Contains(t, out.String(), "Gondola One")
}

func TestRun_AllDays(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("path") == "v3/Stats/SeasonStat" {
			_, _ = w.Write([]byte(`{"data":{"seasonStats":[]}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, "all-days", nil, &out))
	assert.JSONEq(t, `[]`, out.String())
}

func TestRun_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tests := []struct {
		name      string
		cmd       string
		args      []string
		wantUsage bool
	}{
		{name: "unknown command", cmd: "weather", wantUsage: true},
		{name: "days without season", cmd: "days", wantUsage: true},
		{name: "lifts without date", cmd: "lifts", wantUsage: true},
		{name: "days with bad season", cmd: "days", args: []string{"abc"}},
		{name: "lifts with bad date", cmd: "lifts", args: []string{"01/02/2024"}},
		{name: "api failure", cmd: "seasons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), c, tt.cmd, tt.args, &out)
			require.Error(t, err)
			assert.Equal(t, tt.wantUsage, errors.Is(err, errUsage))
			assert.Empty(t, out.String())
		})
	}
}
