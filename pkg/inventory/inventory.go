// Package inventory resolves access point MAC addresses found on guest
// authorizations to the AP names configured in Mist.
package inventory

import (
	"strings"

	"Mist-Guest-Grabber/pkg/macaddr"
	"Mist-Guest-Grabber/pkg/mist"
)

const (
	// APKey is the authorization field holding the AP MAC.
	APKey = "ap"
	// APNameKey is the field added when the AP resolves to a single device.
	APNameKey = "ap_name"
)

// Index groups devices by normalized MAC. More than one device can share a
// MAC (re-claimed hardware, stale inventory), so every match is kept.
type Index map[string][]mist.Device

// BuildIndex groups the inventory by MAC. Devices without a MAC are ignored.
func BuildIndex(devices []mist.Device) Index {
	idx := make(Index, len(devices))
	for _, d := range devices {
		if strings.TrimSpace(d.MAC) == "" {
			continue
		}
		key := macaddr.Key(d.MAC)
		idx[key] = append(idx[key], d)
	}
	return idx
}

// Lookup returns the device for mac only when exactly one device matches.
func (idx Index) Lookup(mac string) (mist.Device, bool) {
	matches := idx[macaddr.Key(mac)]
	if len(matches) != 1 {
		return mist.Device{}, false
	}
	return matches[0], true
}

// Matches returns how many devices share mac.
func (idx Index) Matches(mac string) int {
	return len(idx[macaddr.Key(mac)])
}

// Chain consults indexes in order; the first one with exactly one match wins.
type Chain []Index

// Lookup walks the chain. An index reporting several matches stops the walk
// so an ambiguous org inventory is not papered over by a narrower list.
func (c Chain) Lookup(mac string) (mist.Device, bool) {
	for _, idx := range c {
		switch idx.Matches(mac) {
		case 0:
			continue
		case 1:
			return idx.Lookup(mac)
		default:
			return mist.Device{}, false
		}
	}
	return mist.Device{}, false
}

// Matches returns the match count of the first index that knows mac.
func (c Chain) Matches(mac string) int {
	for _, idx := range c {
		if n := idx.Matches(mac); n > 0 {
			return n
		}
	}
	return 0
}

// Resolver is anything that can map a MAC to a unique device.
type Resolver interface {
	Lookup(mac string) (mist.Device, bool)
}

// Resolve returns a copy of rec with ap_name set when its ap field is a
// non-empty string naming exactly one device. Otherwise the copy is
// unchanged; an ap_name already present is never removed.
func Resolve(rec mist.Record, r Resolver) mist.Record {
	out := rec.Clone()
	v, ok := rec.Get(APKey)
	if !ok {
		return out
	}
	mac, ok := v.(string)
	if !ok || strings.TrimSpace(mac) == "" {
		return out
	}
	if dev, found := r.Lookup(mac); found {
		out.Set(APNameKey, dev.Name)
	}
	return out
}
