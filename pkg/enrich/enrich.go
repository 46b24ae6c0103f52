// Package enrich turns raw guest authorizations into report rows: it adds
// the AP name and human-readable times, and derives the column set.
package enrich

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"

	"Mist-Guest-Grabber/pkg/inventory"
	"Mist-Guest-Grabber/pkg/logger"
	"Mist-Guest-Grabber/pkg/macaddr"
	"Mist-Guest-Grabber/pkg/mist"
)

// Source and derived field names.
const (
	MACKey            = "mac"
	AuthorizedKey     = "authorized_time"
	ExpiringKey       = "authorized_expiring_time"
	AuthTimeColumn    = "Auth Time"
	ExpireTimeColumn  = "Expire Time"
	DefaultTimeLayout = "%I:%M:%S %m-%d-%Y"
)

// Formatter renders epoch-second timestamps in a fixed location and layout.
// Layout is a strftime pattern when it contains "%", a Go layout otherwise.
type Formatter struct {
	Location *time.Location
	Layout   string

	pattern *strftime.Strftime
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

func (f Formatter) layout() string {
	if f.Layout == "" {
		return DefaultTimeLayout
	}
	return f.Layout
}

// Format renders epoch seconds (UTC) in the formatter's location.
func (f Formatter) Format(epoch int64) string {
	return f.formatTime(time.Unix(epoch, 0).UTC().In(f.location()))
}

// Apply returns a copy of rec with "Auth Time" and "Expire Time" added next
// to the original epoch fields. A field that cannot be formatted is left out
// of the copy and reported as a *MalformedRecordError; index identifies the
// record in its sequence. Applying twice yields the same record.
func (f Formatter) Apply(index int, rec mist.Record) (mist.Record, error) {
	out := rec.Clone()
	var errs []error
	for _, pair := range [...]struct{ src, dst string }{
		{AuthorizedKey, AuthTimeColumn},
		{ExpiringKey, ExpireTimeColumn},
	} {
		epoch, err := epochSeconds(rec, pair.src)
		if err != nil {
			errs = append(errs, &MalformedRecordError{
				Index: index,
				MAC:   rec.String(MACKey),
				Field: pair.src,
				Err:   err,
			})
			continue
		}
		out.Set(pair.dst, f.Format(epoch))
	}
	return out, errors.Join(errs...)
}

// epochSeconds reads key as whole epoch seconds. Fractions are truncated.
func epochSeconds(rec mist.Record, key string) (int64, error) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0, ErrMissingField
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		fv, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotEpoch, n.String())
		}
		return floatEpoch(fv)
	case float64:
		return floatEpoch(n)
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotEpoch, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotEpoch, v)
	}
}

func floatEpoch(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotEpoch, f)
	}
	return int64(f), nil
}

// Columns returns the union of keys across records in first-seen order.
func Columns(records []mist.Record) []string {
	var cols []string
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, k := range rec.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

// Enricher applies AP name resolution and time formatting to records.
type Enricher struct {
	Formatter Formatter
	Log       *logger.Logger
}

// Enrich returns the enriched copy of rec along with any diagnostics.
// Nothing here drops a record.
func (e Enricher) Enrich(index int, rec mist.Record, r inventory.Resolver) (mist.Record, []Diagnostic) {
	var diags []Diagnostic
	mac := rec.String(MACKey)

	out := inventory.Resolve(rec, r)
	if ap := rec.String(inventory.APKey); ap != "" && !out.Has(inventory.APNameKey) {
		e.Log.Debugf("AP %s for client %s did not resolve to a single device", ap, mac)
		diags = append(diags, Diagnostic{
			Index:  index,
			MAC:    mac,
			Kind:   KindAPUnresolved,
			Reason: fmt.Sprintf("ap %s has no unique inventory match", macaddr.FormatMacColon(macaddr.Key(ap))),
		})
	}

	out, err := e.Formatter.Apply(index, out)
	if err != nil {
		e.Log.Warnf("Malformed guest record: %v", err)
		diags = append(diags, diagnosticsFrom(err, KindMalformed)...)
	}
	return out, diags
}
