// Package features holds the feature-type tags and the static feature registry.
package features

import (
	"fmt"
	"sort"
	"strings"
)

// Type is a feature-type tag grouping related columns produced by one tool table.
type Type string

const (
	Checkstyle              Type = "checkstyle"
	DesigniteDesign         Type = "designite_design"
	DesigniteImplementation Type = "designite_implementation"
	DesigniteTypeOrganic    Type = "designite_type_organic"
	DesigniteMethodOrganic  Type = "designite_method_organic"
	DesigniteTypeMetrics    Type = "designite_type_metrics"
	DesigniteMethodMetrics  Type = "designite_method_metrics"
	SourceMonitorFiles      Type = "source_monitor_files"
	SourceMonitor           Type = "source_monitor"
	CK                      Type = "ck"
	Mood                    Type = "mood"
	Halstead                Type = "halstead"
	Bugged                  Type = "bugged"
	BuggedMethods           Type = "bugged_methods"
)

// Label column names. They are never defaulted when tables are merged.
const (
	ClassLabel  = "Bugged"
	MethodLabel = "BuggedMethods"
)

// AllTypes lists every tag in a stable order.
func AllTypes() []Type {
	return []Type{
		Checkstyle,
		DesigniteDesign, DesigniteImplementation,
		DesigniteTypeOrganic, DesigniteMethodOrganic,
		DesigniteTypeMetrics, DesigniteMethodMetrics,
		SourceMonitorFiles, SourceMonitor,
		CK, Mood, Halstead,
		Bugged, BuggedMethods,
	}
}

// IsLabel reports whether the tag carries ground-truth labels.
func (t Type) IsLabel() bool {
	return t == Bugged || t == BuggedMethods
}

// ParseType converts a string to a Type.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown feature type %q", s)
}

// ParseTypes converts strings to Types, failing on the first unknown tag.
func ParseTypes(ss []string) ([]Type, error) {
	out := make([]Type, 0, len(ss))
	for _, s := range ss {
		t, err := ParseType(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Set is a set of tags.
type Set map[Type]struct{}

// NewSet builds a Set from tags.
func NewSet(types ...Type) Set {
	s := make(Set, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(t Type) bool {
	_, ok := s[t]
	return ok
}

// Intersects reports whether any of types is in the set.
func (s Set) Intersects(types []Type) bool {
	for _, t := range types {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// HasLabels reports whether the set requests ground truth.
func (s Set) HasLabels() bool {
	return s.Has(Bugged) || s.Has(BuggedMethods)
}

// Sorted returns the tags in the order of AllTypes.
func (s Set) Sorted() []Type {
	out := make([]Type, 0, len(s))
	for _, t := range AllTypes() {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Feature is one registry entry.
type Feature struct {
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	Column      string `json:"column"`
	Description string `json:"description"`
}

var (
	byName   map[string]Feature
	byColumn map[Type]map[string]Feature
)

func init() {
	byName = make(map[string]Feature, len(registry))
	byColumn = make(map[Type]map[string]Feature)
	for _, f := range registry {
		if _, dup := byName[f.Name]; dup {
			panic("features: duplicate name " + f.Name)
		}
		byName[f.Name] = f
		if byColumn[f.Type] == nil {
			byColumn[f.Type] = make(map[string]Feature)
		}
		byColumn[f.Type][f.Column] = f
	}
}

// Registry returns every registered feature in declaration order.
func Registry() []Feature {
	out := make([]Feature, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a feature by its stable name.
func Lookup(name string) (Feature, bool) {
	f, ok := byName[name]
	return f, ok
}

// ByType returns the registered features of one tag.
func ByType(t Type) []Feature {
	var out []Feature
	for _, f := range registry {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}

// Columns returns the source column names registered for a tag.
func Columns(t Type) []string {
	fs := ByType(t)
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Column
	}
	return out
}

// Label returns the output column name for a tool column. Registered columns use the
// feature's stable name; anything else is qualified with its tag.
func Label(t Type, column string) string {
	if f, ok := byColumn[t][column]; ok {
		return f.Name
	}
	return string(t) + "." + column
}

// TypesFor returns the distinct tags of the named features.
func TypesFor(names ...string) ([]Type, error) {
	set := NewSet()
	for _, n := range names {
		f, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", n)
		}
		set[f.Type] = struct{}{}
	}
	return set.Sorted(), nil
}

// Names returns every registered name sorted alphabetically.
func Names() []string {
	out := make([]string, 0, len(byName))
	for n := range byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
