package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/reviewdash/internal/config"
	"github.com/timmy/reviewdash/internal/domain"
)

const (
	halfwayStatus = `{"is_running":true,"progress":375000,"total":750000,"current_phase":"Generating chunk 8","completed":false,"files_created":[]}`
	doneStatus    = `{"is_running":false,"progress":750000,"total":750000,"current_phase":"Completed","completed":true,"files_created":["a.json","b.json"]}`
)

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Generator: config.GeneratorConfig{BaseURL: baseURL},
		Poll:      config.PollConfig{Interval: 10 * time.Millisecond},
		Defaults:  config.DefaultsConfig{TotalReviews: domain.DefaultTotalReviews, ChunkSize: domain.DefaultChunkSize},
		Actions:   config.ActionsConfig{TestBatchSize: domain.DefaultTestBatchSize},
	}
}

func execute(t *testing.T, cmd *cobra.Command, baseURL string, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), cmd, baseURL, args...)
}

func executeContext(t *testing.T, ctx context.Context, cmd *cobra.Command, baseURL string, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(WithConfig(ctx, testConfig(baseURL)))
	return out.String(), err
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "abc123")

	out, err := execute(t, cmd, "http://unused")
	require.NoError(t, err)
	assert.Contains(t, out, "genctl v1.2.3")
	assert.Contains(t, out, "abc123")
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{cmd: NewStatusCommand(), use: "status", flags: []string{"json"}},
		{cmd: NewStartCommand(), use: "start", flags: []string{"total-reviews", "chunk-size"}},
		{cmd: NewSampleCommand(), use: "sample"},
		{cmd: NewAspectsCommand(), use: "aspects"},
		{cmd: NewTestBatchCommand(), use: "test-batch", flags: []string{"size"}},
		{cmd: NewWatchCommand(), use: "watch", flags: []string{"interval", "discard-stale", "until-done"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generation/status", r.URL.Path)
		reply(w, http.StatusOK, halfwayStatus)
	}))
	defer srv.Close()

	out, err := execute(t, NewStatusCommand(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "375,000 / 750,000")
	assert.Contains(t, out, "Generating chunk 8")
	assert.NotContains(t, out, "Files Created")
}

func TestStatusCommandJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, doneStatus)
	}))
	defer srv.Close()

	out, err := execute(t, NewStatusCommand(), srv.URL, "--json")
	require.NoError(t, err)

	var status domain.JobStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Completed)
	assert.Len(t, status.FilesCreated, 2)
}

func TestStatusCommandUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := execute(t, NewStatusCommand(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch status")
}

func TestStartCommand(t *testing.T) {
	var got domain.GenerationSettings
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generation/start", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, http.StatusOK, `{"message":"Started generation of 1000 reviews"}`)
	}))
	defer srv.Close()

	out, err := execute(t, NewStartCommand(), srv.URL, "--total-reviews", "1000", "--chunk-size", "100")
	require.NoError(t, err)
	assert.Equal(t, "Started generation of 1000 reviews\n", out)
	assert.Equal(t, domain.GenerationSettings{TotalReviews: 1000, ChunkSize: 100}, got)
}

func TestStartCommandUsesConfiguredDefaults(t *testing.T) {
	var got domain.GenerationSettings
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, http.StatusOK, `{"message":"ok"}`)
	}))
	defer srv.Close()

	_, err := execute(t, NewStartCommand(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)
}

func TestStartCommandFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "service detail", status: http.StatusConflict, body: `{"detail":"Generation already in progress"}`, wantErr: "Generation already in progress"},
		{name: "no detail", status: http.StatusInternalServerError, body: `{}`, wantErr: "Error starting generation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reply(w, tt.status, tt.body)
			}))
			defer srv.Close()

			_, err := execute(t, NewStartCommand(), srv.URL)
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestStartCommandRejectsInvalidSettings(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		reply(w, http.StatusOK, `{"message":"ok"}`)
	}))
	defer srv.Close()

	_, err := execute(t, NewStartCommand(), srv.URL, "--chunk-size", "0")
	require.ErrorIs(t, err, domain.ErrInvalidSettings)
	assert.Zero(t, calls.Load())
}

func TestSampleCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"review_id":42,"review_text":"The shower was cold.","aspects":["shower"],"problems":["no hot water"]}`)
	}))
	defer srv.Close()

	out, err := execute(t, NewSampleCommand(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "The shower was cold.")
	assert.Contains(t, out, "no hot water")
}

func TestSampleCommandFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusInternalServerError, `{"detail":"generator crashed"}`)
	}))
	defer srv.Close()

	_, err := execute(t, NewSampleCommand(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, "Error generating sample", err.Error())
}

func TestAspectsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"total_aspects":2,"aspects":{"wifi":["internet","connection"],"breakfast":["buffet"]}}`)
	}))
	defer srv.Close()

	out, err := execute(t, NewAspectsCommand(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "breakfast")
	assert.Contains(t, out, "internet, connection")
	assert.Contains(t, out, "2 aspects")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "Synonyms")
	assert.Less(t, strings.Index(out, "breakfast"), strings.Index(out, "wifi"))
}

func TestTestBatchCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSize string
	}{
		{name: "configured size", wantSize: "100"},
		{name: "size flag", args: []string{"--size", "20"}, wantSize: "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, tt.wantSize, r.URL.Query().Get("size"))
				reply(w, http.StatusOK, `{"message":"Generated test reviews","file":"test_batch.json","sample":[{"review_id":1,"review_text":"Dirty towels.","aspects":[],"problems":[]}]}`)
			}))
			defer srv.Close()

			out, err := execute(t, NewTestBatchCommand(), srv.URL, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Generated test reviews")
			assert.Contains(t, out, "File: test_batch.json")
			assert.Contains(t, out, "Dirty towels.")
		})
	}
}

func TestTestBatchCommandRejectsNonPositiveSize(t *testing.T) {
	_, err := execute(t, NewTestBatchCommand(), "http://unused", "--size", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size must be positive")
}

func TestWatchCommandUntilDone(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			reply(w, http.StatusOK, halfwayStatus)
			return
		}
		reply(w, http.StatusOK, doneStatus)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := executeContext(t, ctx, NewWatchCommand(), srv.URL, "--until-done")
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "watch should exit on its own once the job is done")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, lines[len(lines)-1], "100.0%")
	assert.Contains(t, lines[len(lines)-1], "(2 files)")
}

func TestWatchCommandUntilDoneWaitsForRunningJob(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch n := calls.Add(1); {
		case n <= 3:
			// the previous job is still reported until the new one shows up
			reply(w, http.StatusOK, doneStatus)
		case n <= 10:
			reply(w, http.StatusOK, halfwayStatus)
		default:
			reply(w, http.StatusOK, doneStatus)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := executeContext(t, ctx, NewWatchCommand(), srv.URL, "--until-done")
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "watch should exit on its own once the job is done")

	assert.GreaterOrEqual(t, calls.Load(), int64(11))
	assert.Contains(t, out, "50.0%")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[len(lines)-1], "(2 files)")
}

func TestWatchCommandStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, halfwayStatus)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out, err := executeContext(t, ctx, NewWatchCommand(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "375,000 / 750,000")
}
