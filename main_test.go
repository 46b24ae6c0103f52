package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Mist-Guest-Grabber/pkg/mist"
)

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{
			name:   "first non-empty",
			values: []string{"", "second", "third"},
			want:   "second",
		},
		{
			name:   "all empty",
			values: []string{"", "", ""},
			want:   "",
		},
		{
			name:   "whitespace is empty",
			values: []string{"  ", "second"},
			want:   "second",
		},
		{
			name:   "first is non-empty",
			values: []string{"first", "second", "third"},
			want:   "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := firstNonEmpty(tt.values...)
			if got != tt.want {
				t.Errorf("firstNonEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       int
		wantStdout string
		wantStderr string
	}{
		{name: "success", err: nil, want: 0},
		{
			name:       "canceled",
			err:        fmt.Errorf("search guests for site HQ: %w", &mist.TransportError{Method: "GET", URL: "https://api.mist.com/", Err: context.Canceled}),
			want:       0,
			wantStdout: "User cancelled, exiting.\nDone.\n",
		},
		{
			name:       "failure",
			err:        errors.New("write ./guests.csv: permission denied"),
			want:       1,
			wantStderr: "ERROR: write ./guests.csv: permission denied\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := exitCode(tt.err, &stdout, &stderr); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if stderr.String() != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestWriteSites(t *testing.T) {
	var buf bytes.Buffer
	writeSites(&buf, "org-1", []mist.Site{
		{ID: "s2", Name: "branch"},
		{ID: "s1", Name: "HQ"},
		{ID: "s3", Name: "Annex"},
	})
	want := "Organization: org-1\n  - Annex (s3)\n  - branch (s2)\n  - HQ (s1)\n"
	if buf.String() != want {
		t.Errorf("writeSites() = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	writeSites(&buf, "org-1", nil)
	assert.Contains(t, buf.String(), "(no sites)")
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)
	assert.Contains(t, buf.String(), "Mist-Guest-Grabber version "+Version)
	assert.Contains(t, buf.String(), "Commit:")
}

// isolate keeps the developer's environment and home config out of a run.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"MIST_ORG_ID", "MIST_API_TOKEN", "MIST_API_HOST", "MIST_OUTPUT", "MIST_OUTPUT_FORMAT",
		"MIST_TIME_FORMAT", "MIST_TIMEZONE", "MIST_DURATION", "MIST_LIMIT", "MIST_WLAN",
		"MIST_SITE", "MIST_INVENTORY_TYPE", "MIST_SITE_DEVICES", "MIST_TIMEOUT",
		"MIST_LOG_FILE", "MIST_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func newFakeMist(t *testing.T) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "token secret" {
				http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	router.HandleFunc("/api/v1/self", reply(`{"email":"ops@example.com"}`))
	router.HandleFunc("/api/v1/orgs/org-1/sites", reply(`[{"id":"s2","name":"Branch"},{"id":"s1","name":"HQ"}]`))
	router.HandleFunc("/api/v1/orgs/org-1/inventory", reply(`[{"mac":"5c5b35000001","name":"Lobby-AP","type":"ap"}]`))
	router.HandleFunc("/api/v1/sites/s1/guests/search", reply(`{"results":[
		{"mac":"aa","ap":"5c5b35000001","authorized_time":0,"authorized_expiring_time":86400,"ssid":"Guest"}
	]}`))
	router.HandleFunc("/api/v1/sites/s2/guests/search", reply(`{"results":[]}`))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestRun_Report(t *testing.T) {
	isolate(t)
	server := newFakeMist(t)
	out := filepath.Join(t.TempDir(), "guests.csv")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--org-id", "org-1",
		"--api-token", "secret",
		"--api-host", server.URL,
		"--timezone", "UTC",
		"--log-level", "ERROR",
		"-o", out,
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Getting guests...")
	assert.Contains(t, stdout.String(), "Searched 2 sites, 1 guest records.")
	assert.True(t, strings.HasSuffix(stdout.String(), "Done.\n"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"mac,ap,authorized_time,authorized_expiring_time,ssid,ap_name,Auth Time,Expire Time\n"+
			"aa,5c5b35000001,0,86400,Guest,Lobby-AP,12:00:00 01-01-1970,12:00:00 01-02-1970\n",
		string(data))
}

func TestRun_ConfigFromEnvironment(t *testing.T) {
	isolate(t)
	server := newFakeMist(t)
	out := filepath.Join(t.TempDir(), "guests.txt")
	t.Setenv("MIST_ORG_ID", "org-1")
	t.Setenv("MIST_API_TOKEN", "secret")
	t.Setenv("MIST_API_HOST", server.URL)
	t.Setenv("MIST_OUTPUT", out)
	t.Setenv("MIST_OUTPUT_FORMAT", "text")
	t.Setenv("MIST_SITE", "HQ")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--log-level", "ERROR"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Searched 1 sites, 1 guest records.")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Lobby-AP")
}

func TestRun_CanceledLeavesNoFile(t *testing.T) {
	isolate(t)
	server := newFakeMist(t)
	out := filepath.Join(t.TempDir(), "guests.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{
		"--org-id", "org-1", "--api-token", "secret", "--api-host", server.URL, "-o", out,
	}, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "User cancelled, exiting.\nDone.\n")
	assert.NoFileExists(t, out)
}

func TestRun_MissingToken(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--org-id", "org-1"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "api_token is required")
}

func TestRun_InvalidSettings(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--org-id", "org-1", "--api-token", "secret", "--output-format", "xlsx", "--timezone", "Mars/Olympus",
		"--time-format", "%Y-%Q",
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "xlsx")
	assert.Contains(t, stderr.String(), "Mars/Olympus")
	assert.Contains(t, stderr.String(), "%Y-%Q")
}

func TestRun_BadTokenIsFatal(t *testing.T) {
	isolate(t)
	server := newFakeMist(t)
	out := filepath.Join(t.TempDir(), "guests.csv")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--org-id", "org-1", "--api-token", "wrong", "--api-host", server.URL, "-o", out, "--log-level", "ERROR",
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "401")
	assert.NoFileExists(t, out)
}

func TestRun_TestAPI(t *testing.T) {
	isolate(t)
	server := newFakeMist(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--test-api", "--api-token", "secret", "--api-host", server.URL}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "API OK: token belongs to ops@example.com\n", stdout.String())
}

func TestRun_ListSites(t *testing.T) {
	isolate(t)
	server := newFakeMist(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--list-sites", "--org-id", "org-1", "--api-token", "secret", "--api-host", server.URL,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Organization: org-1\n  - Branch (s2)\n  - HQ (s1)\n", stdout.String())
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Mist-Guest-Grabber version")
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--mac", "00:11:22:33:44:55"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown flag")
}
