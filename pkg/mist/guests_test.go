package mist

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guestSearchPath = "/api/v1/sites/{site}/guests/search"

func guestJSON(mac string) map[string]any {
	return map[string]any{
		"mac":                      mac,
		"ap":                       "5c5b35000001",
		"ssid":                     "Guest",
		"authorized_time":          1700000000,
		"authorized_expiring_time": 1700086400,
	}
}

// servePages registers a guest search that serves pages[i] for ?page=i and
// links each page to the next with a host-rooted cursor.
func servePages(t *testing.T, pages [][]map[string]any) (*Client, *[]string) {
	t.Helper()
	router, server := newFakeMist(t)
	var requested []string

	router.HandleFunc(guestSearchPath, func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.RawQuery)
		idx, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if idx >= len(pages) {
			http.Error(w, "no such page", http.StatusBadRequest)
			return
		}
		resp := map[string]any{
			"results": pages[idx],
			"limit":   2,
			"total":   len(pages),
		}
		if idx+1 < len(pages) {
			resp["next"] = fmt.Sprintf("/api/v1/sites/s1/guests/search?duration=1d&limit=2&page=%d", idx+1)
		}
		writeJSON(w, resp)
	}).Methods(http.MethodGet)

	return newTestClient(server), &requested
}

func TestSearchGuests_FollowsNext(t *testing.T) {
	pages := [][]map[string]any{
		{guestJSON("aa0000000001"), guestJSON("aa0000000002")},
		{guestJSON("aa0000000003"), guestJSON("aa0000000004")},
		{guestJSON("aa0000000005")},
	}
	client, requested := servePages(t, pages)

	got, err := client.SearchGuests(context.Background(), "s1", GuestSearch{Duration: "1d", Limit: 2, WLAN: "w1"})
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, rec := range got {
		assert.Equal(t, fmt.Sprintf("aa000000000%d", i+1), rec.String("mac"))
	}

	require.Len(t, *requested, 3)
	assert.Equal(t, "duration=1d&limit=2&wlan=w1", (*requested)[0])
	assert.Equal(t, "duration=1d&limit=2&page=1", (*requested)[1])
}

func TestSearchGuests_LengthIsSumOfPages(t *testing.T) {
	for _, sizes := range [][]int{{0}, {1}, {3, 0}, {2, 2, 1}, {1, 1, 1, 1, 1}} {
		t.Run(fmt.Sprint(sizes), func(t *testing.T) {
			var pages [][]map[string]any
			want := 0
			for p, n := range sizes {
				page := []map[string]any{}
				for i := 0; i < n; i++ {
					page = append(page, guestJSON(fmt.Sprintf("bb%02d%08d", p, i)))
				}
				pages = append(pages, page)
				want += n
			}
			client, requested := servePages(t, pages)

			got, err := client.SearchGuests(context.Background(), "s1", GuestSearch{Duration: "1d", Limit: 2})
			require.NoError(t, err)
			assert.Len(t, got, want)
			assert.NotNil(t, got)
			assert.Len(t, *requested, len(sizes))
		})
	}
}

func TestSearchGuests_KeepsDuplicates(t *testing.T) {
	dup := guestJSON("cc0000000001")
	client, _ := servePages(t, [][]map[string]any{{dup}, {dup}})

	got, err := client.SearchGuests(context.Background(), "s1", GuestSearch{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].String("mac"), got[1].String("mac"))
}

func TestSearchGuests_FirstPageFailure(t *testing.T) {
	router, server := newFakeMist(t)
	router.HandleFunc(guestSearchPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"site not found"}`, http.StatusNotFound)
	})

	got, err := newTestClient(server).SearchGuests(context.Background(), "s1", GuestSearch{})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, IsAPI(err))
}

func TestSearchGuests_MidStreamFailureDiscardsPartial(t *testing.T) {
	router, server := newFakeMist(t)
	router.HandleFunc(guestSearchPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			writeJSON(w, map[string]any{
				"results": []any{guestJSON("dd0000000001")},
				"next":    "/api/v1/sites/s1/guests/search?page=1",
			})
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	got, err := newTestClient(server).SearchGuests(context.Background(), "s1", GuestSearch{})
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestSearchGuests_MissingResults(t *testing.T) {
	router, server := newFakeMist(t)
	router.HandleFunc(guestSearchPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"total": 0})
	})

	got, err := newTestClient(server).SearchGuests(context.Background(), "s1", GuestSearch{})
	require.ErrorIs(t, err, ErrMalformedPage)
	assert.Nil(t, got)
}

func TestSearchGuests_NullNextStops(t *testing.T) {
	router, server := newFakeMist(t)
	router.HandleFunc(guestSearchPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"results": []any{guestJSON("ee0000000001")}, "next": nil})
	})

	got, err := newTestClient(server).SearchGuests(context.Background(), "s1", GuestSearch{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchGuests_AbsoluteCursorOnSameHost(t *testing.T) {
	router, server := newFakeMist(t)
	router.HandleFunc(guestSearchPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			writeJSON(w, map[string]any{
				"results": []any{guestJSON("ab0000000001")},
				"next":    server.URL + "/api/v1/sites/s1/guests/search?page=2",
			})
			return
		}
		writeJSON(w, map[string]any{"results": []any{guestJSON("ab0000000002")}})
	})

	got, err := newTestClient(server).SearchGuests(context.Background(), "s1", GuestSearch{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchGuests_ForeignCursorIsRejected(t *testing.T) {
	var leaked []string
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		leaked = append(leaked, r.Header.Get("Authorization"))
		writeJSON(w, map[string]any{"results": []any{}})
	}))
	t.Cleanup(foreign.Close)

	tests := []struct {
		name string
		next string
	}{
		{"other host", foreign.URL + "/steal"},
		{"protocol relative", "//" + strings.TrimPrefix(foreign.URL, "http://") + "/steal"},
		{"relative", "page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, server := newFakeMist(t)
			router.HandleFunc(guestSearchPath, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]any{"results": []any{guestJSON("ac0000000001")}, "next": tt.next})
			})

			got, err := newTestClient(server).SearchGuests(context.Background(), "s1", GuestSearch{})
			require.ErrorIs(t, err, ErrMalformedPage)
			assert.Nil(t, got)
		})
	}
	assert.Empty(t, leaked, "token sent to a foreign host")
}

func TestSearchGuests_CursorLoop(t *testing.T) {
	router, server := newFakeMist(t)
	router.HandleFunc(guestSearchPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"results": []any{guestJSON("ff0000000001")},
			"next":    "/api/v1/sites/s1/guests/search?page=1",
		})
	})

	got, err := newTestClient(server).SearchGuests(context.Background(), "s1", GuestSearch{})
	require.ErrorIs(t, err, ErrPaginationLoop)
	assert.Nil(t, got)
}
