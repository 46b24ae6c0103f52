package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

// isStrftime reports whether layout is a strftime pattern rather than a Go
// reference-time layout.
func isStrftime(layout string) bool {
	return strings.Contains(layout, "%")
}

// CheckLayout reports whether layout can format times. Go layouts always
// can; strftime patterns must only use known directives.
func CheckLayout(layout string) error {
	if !isStrftime(layout) {
		return nil
	}
	if _, err := strftime.New(layout); err != nil {
		return fmt.Errorf("time format %q: %w", layout, err)
	}
	return nil
}

// NewFormatter returns a Formatter with its layout compiled once. layout may
// be a strftime pattern such as "%I:%M:%S %m-%d-%Y" or a Go layout; empty
// means DefaultTimeLayout.
func NewFormatter(loc *time.Location, layout string) (Formatter, error) {
	f := Formatter{Location: loc, Layout: layout}
	if isStrftime(f.layout()) {
		p, err := strftime.New(f.layout())
		if err != nil {
			return Formatter{}, fmt.Errorf("time format %q: %w", layout, err)
		}
		f.pattern = p
	}
	return f, nil
}

// formatTime renders t with a compiled pattern, a strftime pattern compiled
// on the spot, or a Go layout. A pattern that does not compile falls back
// to DefaultTimeLayout.
func (f Formatter) formatTime(t time.Time) string {
	if f.pattern != nil {
		return f.pattern.FormatString(t)
	}
	layout := f.layout()
	if !isStrftime(layout) {
		return t.Format(layout)
	}
	out, err := strftime.Format(layout, t)
	if err != nil {
		out, _ = strftime.Format(DefaultTimeLayout, t)
	}
	return out
}
