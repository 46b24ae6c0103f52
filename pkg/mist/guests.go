package mist

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GuestSearch holds the query for sites/{site}/guests/search.
type GuestSearch struct {
	Duration string // e.g. "1d", "7d"
	Limit    int
	WLAN     string // optional WLAN id filter
}

func (q GuestSearch) values() url.Values {
	v := url.Values{}
	if q.Duration != "" {
		v.Set("duration", q.Duration)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.WLAN != "" {
		v.Set("wlan", q.WLAN)
	}
	return v
}

// searchPage is one page of a cursor-paginated search. Pointers distinguish
// an absent field from an empty one.
type searchPage struct {
	Results *[]Record `json:"results"`
	Next    *string   `json:"next"`
}

// SearchGuests returns every guest authorization matching q on a site,
// following the "next" cursor until the last page.
func (c *Client) SearchGuests(ctx context.Context, siteID string, q GuestSearch) ([]Record, error) {
	path := fmt.Sprintf("sites/%s/guests/search", url.PathEscape(siteID))
	return c.paginate(ctx, path, q.values())
}

// paginate drains a search endpoint. Any failure, on the first page or a
// later one, returns nil: callers never see a partial result set.
// Duplicates across pages are kept as returned.
func (c *Client) paginate(ctx context.Context, path string, query url.Values) ([]Record, error) {
	var all []Record
	seen := make(map[string]struct{})

	for {
		var page searchPage
		if err := c.getJSON(ctx, path, query, &page); err != nil {
			return nil, err
		}
		if page.Results == nil {
			return nil, fmt.Errorf("%w: %s has no results", ErrMalformedPage, c.resolve(path))
		}
		all = append(all, *page.Results...)

		if page.Next == nil || *page.Next == "" {
			break
		}
		next, err := c.cursorPath(*page.Next)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[next]; dup {
			return nil, fmt.Errorf("%w: %s", ErrPaginationLoop, next)
		}
		seen[next] = struct{}{}

		// The cursor already carries the full query string.
		path, query = next, nil
	}

	if all == nil {
		all = []Record{}
	}
	return all, nil
}
