package extractor

import (
	"github.com/panbanda/defectset/pkg/features"
)

// Registry returns every adapter in run order.
func Registry() []Extractor {
	return []Extractor{
		Bugged{},
		Checkstyle{},
		Designite{},
		SourceMonitor{},
		CK{},
		Mood{},
		Halstead{},
	}
}

// Lookup returns the registered adapter with the given name.
func Lookup(name string) (Extractor, bool) {
	for _, ex := range Registry() {
		if ex.Name() == name {
			return ex, true
		}
	}
	return nil, false
}

// Select keeps the adapters whose tags intersect requested. Adapters whose tooling is
// not configured are skipped, and the label adapter only runs when labels is set.
func Select(all []Extractor, requested features.Set, labels bool, tools Tools) []Extractor {
	var out []Extractor
	for _, ex := range all {
		if isLabelAdapter(ex) {
			if labels {
				out = append(out, ex)
			}
			continue
		}
		if !requested.Intersects(ex.Types()) {
			continue
		}
		if a, ok := ex.(Availability); ok && !a.Available(tools) {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// Skipped lists the requested adapters Select leaves out for missing tooling.
func Skipped(all []Extractor, requested features.Set, tools Tools) []string {
	var out []string
	for _, ex := range all {
		if isLabelAdapter(ex) || !requested.Intersects(ex.Types()) {
			continue
		}
		if a, ok := ex.(Availability); ok && !a.Available(tools) {
			out = append(out, ex.Name())
		}
	}
	return out
}

func isLabelAdapter(ex Extractor) bool {
	for _, t := range ex.Types() {
		if !t.IsLabel() {
			return false
		}
	}
	return len(ex.Types()) > 0
}
