// Package filters narrows sites and devices before guests are fetched.
package filters

import (
	"fmt"
	"strings"

	"Mist-Guest-Grabber/pkg/mist"
)

// AllSites selects every site in the organization.
const AllSites = "ALL"

// FilterDevicesByType returns only devices of the given type ("ap", "switch",
// "gateway"). An empty type returns devices unchanged.
func FilterDevicesByType(devices []mist.Device, deviceType string) []mist.Device {
	deviceType = strings.TrimSpace(deviceType)
	if deviceType == "" {
		return devices
	}
	var out []mist.Device
	for _, d := range devices {
		// Site device lists omit type for APs on older orgs.
		if strings.EqualFold(d.Type, deviceType) || (d.Type == "" && strings.EqualFold(deviceType, "ap")) {
			out = append(out, d)
		}
	}
	return out
}

// SelectSites picks sites by a comma-separated list of names or IDs.
// "ALL" (any case) or an empty selector returns every site.
// Each entry must match at least one site.
func SelectSites(selector string, sites []mist.Site) ([]mist.Site, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" || strings.EqualFold(selector, AllSites) {
		return sites, nil
	}

	var out []mist.Site
	picked := make(map[string]struct{})
	for _, want := range strings.Split(selector, ",") {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		found := false
		for _, s := range sites {
			if !MatchesSite(s, want) {
				continue
			}
			found = true
			if _, dup := picked[s.ID]; dup {
				continue
			}
			picked[s.ID] = struct{}{}
			out = append(out, s)
		}
		if !found {
			return nil, fmt.Errorf("site %q not found", want)
		}
	}
	return out, nil
}

// MatchesSite reports whether want names the site by ID or, ignoring case, by name.
func MatchesSite(s mist.Site, want string) bool {
	return s.ID == want || strings.EqualFold(s.Name, want)
}
