// Package mist provides a client for the Juniper Mist cloud API v1.
// It covers the handful of endpoints needed to report guest authorizations:
// the caller identity, sites, inventory, site devices and the paginated
// guest search.
package mist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"Mist-Guest-Grabber/pkg/logger"
	"Mist-Guest-Grabber/pkg/macaddr"
)

// DefaultHost is the Mist global cloud (AWS) API host.
const DefaultHost = "api.mist.com"

const apiPrefix = "/api/v1/"

// Self is the caller identity returned by GET /self.
type Self struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

// Site represents a Mist site. Only ID is needed to walk guests.
type Site struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OrgID    string `json:"org_id"`
	Timezone string `json:"timezone"`
}

// Device represents an inventory entry or site device (AP, switch, gateway).
type Device struct {
	ID     string `json:"id"`
	MAC    string `json:"mac"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Model  string `json:"model"`
	Serial string `json:"serial"`
	SiteID string `json:"site_id"`
}

// Response is a raw 2xx API response.
type Response struct {
	StatusCode int
	URL        string
	Body       []byte
}

// ClientConfig holds what is needed to reach the API.
type ClientConfig struct {
	Token string
	// Host is either a bare host name ("api.eu.mist.com", https implied)
	// or a full base such as "http://127.0.0.1:8080".
	Host    string
	Timeout time.Duration
	Logger  *logger.Logger
}

// Client is an HTTP client wrapper for the Mist API.
type Client struct {
	http *resty.Client
	root string
}

// NewClient creates a new Mist API client. A zero Timeout uses 30 seconds.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "token "+cfg.Token)
	if cfg.Logger != nil {
		r.SetLogger(cfg.Logger)
	}

	return &Client{http: r, root: rootURL(cfg.Host)}
}

// rootURL turns a configured host into scheme://host with no trailing slash.
func rootURL(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/")
}

// resolve builds an absolute URL. Paths beginning with "/" are host-rooted
// (the form used by pagination cursors); anything else is relative to /api/v1/.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.root + path
	}
	return c.root + apiPrefix + path
}

// cursorPath turns a pagination cursor into a host-rooted path. An absolute
// cursor is accepted only on the configured scheme and host, since the
// token header goes with every request.
func (c *Client) cursorPath(next string) (string, error) {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next, nil
	}
	u, err := url.Parse(next)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: cursor %q is not a path", ErrMalformedPage, next)
	}
	root, err := url.Parse(c.root)
	if err != nil || !strings.EqualFold(u.Scheme, root.Scheme) || !strings.EqualFold(u.Host, root.Host) {
		return "", fmt.Errorf("%w: cursor %q points off %s", ErrMalformedPage, next, c.root)
	}
	return u.RequestURI(), nil
}

// Do issues a request and returns the raw response. body, when non-nil, is
// sent as JSON. A non-2xx status yields the response and an *APIError; no
// response at all yields an *TransportError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	target := c.resolve(path)

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, target)
	if err != nil {
		return nil, &TransportError{Method: method, URL: withQuery(target, query), Err: err}
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		URL:        withQuery(target, query),
		Body:       resp.Body(),
	}
	if out.StatusCode < 200 || out.StatusCode >= 300 {
		return out, &APIError{
			Method:     method,
			URL:        out.URL,
			StatusCode: out.StatusCode,
			Body:       strings.TrimSpace(string(out.Body)),
		}
	}
	return out, nil
}

func withQuery(target string, query url.Values) string {
	if len(query) == 0 {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + query.Encode()
}

// getJSON issues a GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(resp, v)
}

func decode(resp *Response, v any) error {
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, resp.URL, err)
	}
	return nil
}

// Self returns the identity owning the API token. Useful as an auth check.
func (c *Client) Self(ctx context.Context) (*Self, error) {
	var s Self
	if err := c.getJSON(ctx, "self", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Sites lists the sites of an organization.
func (c *Client) Sites(ctx context.Context, orgID string) ([]Site, error) {
	var sites []Site
	path := fmt.Sprintf("orgs/%s/sites", url.PathEscape(orgID))
	if err := c.getJSON(ctx, path, nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// Inventory lists the organization inventory. An empty deviceType returns
// every type the API returns by default.
func (c *Client) Inventory(ctx context.Context, orgID, deviceType string) ([]Device, error) {
	query := url.Values{}
	if deviceType != "" {
		query.Set("type", deviceType)
	}
	var devices []Device
	path := fmt.Sprintf("orgs/%s/inventory", url.PathEscape(orgID))
	if err := c.getJSON(ctx, path, query, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// SiteDevices lists the devices configured on a site.
func (c *Client) SiteDevices(ctx context.Context, siteID string) ([]Device, error) {
	var devices []Device
	path := fmt.Sprintf("sites/%s/devices", url.PathEscape(siteID))
	if err := c.getJSON(ctx, path, nil, &devices); err != nil {
		return nil, err
	}
	for i := range devices {
		devices[i].fillMAC()
	}
	return devices, nil
}

// fillMAC recovers a missing MAC from the device ID.
func (d *Device) fillMAC() {
	if d.MAC != "" || d.ID == "" {
		return
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return
	}
	if mac, err := macaddr.MacFromDeviceID(id); err == nil {
		d.MAC = mac
	}
}

// Device fetches a single site device by MAC, addressing it by its derived
// Mist device ID.
func (c *Client) Device(ctx context.Context, siteID, mac string) (*Device, error) {
	id, err := macaddr.DeviceID(mac)
	if err != nil {
		return nil, err
	}
	var d Device
	path := fmt.Sprintf("sites/%s/devices/%s", url.PathEscape(siteID), id)
	if err := c.getJSON(ctx, path, nil, &d); err != nil {
		return nil, err
	}
	d.fillMAC()
	return &d, nil
}
