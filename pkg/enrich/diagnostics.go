package enrich

import (
	"errors"
	"fmt"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindMalformed    Kind = "malformed"
	KindAPUnresolved Kind = "ap_unresolved"
)

// Diagnostic records something the operator may want to audit about one
// record: a field that could not be formatted or an AP that did not resolve.
type Diagnostic struct {
	Index  int
	MAC    string
	Kind   Kind
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("#%d %s [%s] %s", d.Index, d.MAC, d.Kind, d.Reason)
}

// Count returns how many diagnostics have the given kind.
func Count(diags []Diagnostic, kind Kind) int {
	n := 0
	for _, d := range diags {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// diagnosticsFrom unpacks joined *MalformedRecordError values.
func diagnosticsFrom(err error, kind Kind) []Diagnostic {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	out := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		var mre *MalformedRecordError
		if errors.As(e, &mre) {
			out = append(out, Diagnostic{Index: mre.Index, MAC: mre.MAC, Kind: kind, Reason: fmt.Sprintf("%s: %v", mre.Field, mre.Err)})
			continue
		}
		out = append(out, Diagnostic{Index: -1, Kind: kind, Reason: e.Error()})
	}
	return out
}
