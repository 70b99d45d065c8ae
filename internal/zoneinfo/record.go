// Package zoneinfo parses the text printed by `firewall-cmd --info-zone`.
//
// The format is one header line (`<name>` optionally followed by ` (active)`)
// and two-space indented `key: value` lines. A `rich rules:` line is followed
// by tab-indented rule lines, which are kept as raw text.
package zoneinfo

import (
	"sort"
	"strings"
)

// ActiveMarker is the header suffix of a zone bound to an interface or source.
const ActiveMarker = " (active)"

// listKeys are the normalized keys whose values are space separated lists.
var listKeys = map[string]bool{
	"interfaces":    true,
	"sources":       true,
	"services":      true,
	"ports":         true,
	"protocols":     true,
	"forward_ports": true,
	"source_ports":  true,
	"icmp_blocks":   true,
}

// IsListKey reports whether a normalized key holds a list value.
func IsListKey(key string) bool {
	return listKeys[key]
}

// NormalizeKey maps a raw key such as "icmp-blocks" to "icmp_blocks".
func NormalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// Value is either a scalar string or a list of strings.
type Value struct {
	Scalar string
	List   []string
	IsList bool
}

// ScalarValue wraps a scalar.
func ScalarValue(s string) Value {
	return Value{Scalar: s}
}

// ListValue wraps a list. A nil list is stored as empty.
func ListValue(items []string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{List: items, IsList: true}
}

// Interface returns the value as string or []string, for encoders.
func (v Value) Interface() any {
	if v.IsList {
		return v.List
	}
	return v.Scalar
}

// Record is one parsed zone.
type Record struct {
	Name      string
	Active    bool
	Fields    map[string]Value
	RichRules []string
}

// Scalar returns a scalar field.
func (r *Record) Scalar(key string) (string, bool) {
	v, ok := r.Fields[NormalizeKey(key)]
	if !ok || v.IsList {
		return "", false
	}
	return v.Scalar, true
}

// List returns a list field.
func (r *Record) List(key string) ([]string, bool) {
	v, ok := r.Fields[NormalizeKey(key)]
	if !ok || !v.IsList {
		return nil, false
	}
	return v.List, true
}

// Keys returns the field keys in sorted order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map flattens the record for encoders:
// name, active, rich_rules and every field at the top level.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v.Interface()
	}
	out["name"] = r.Name
	out["active"] = r.Active
	rules := r.RichRules
	if rules == nil {
		rules = []string{}
	}
	out["rich_rules"] = rules
	return out
}
