// Package filter is a codec for subscription filters and includes the matcher
// used both for stored-event queries and for in-memory broadcast matching.
package filter

import (
	"encoding/json"
	"fmt"

	"seqrelay.dev/event"
	"seqrelay.dev/reason"
)

// F is the primary query form for requesting events from the relay. All
// fields are optional; absent fields impose no constraint. Within a filter
// the predicates combine by conjunction.
type F struct {
	Ids     []string
	Kinds   []int
	Authors []string
	Since   *int64
	Until   *int64
	Limit   *int
	// Tags maps a single-letter tag name to the set of permitted values,
	// keyed "#X" on the wire.
	Tags map[string][]string
}

// S is a set of filters that combine by disjunction.
type S []*F

// New creates a new empty filter.
func New() (f *F) { return &F{Tags: make(map[string][]string)} }

// IsTagKey reports whether a wire key is a tag predicate: "#" followed by a
// single ASCII letter.
func IsTagKey(k string) bool {
	if len(k) != 2 || k[0] != '#' {
		return false
	}
	c := k[1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// UnmarshalJSON decodes a filter object, collecting "#X" keys into the Tags
// map. Unknown keys are ignored.
func (f *F) UnmarshalJSON(b []byte) (err error) {
	var raw map[string]json.RawMessage
	if err = json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("filter is not an object: %w", err)
	}
	f.Tags = make(map[string][]string)
	for k, v := range raw {
		switch k {
		case "ids":
			err = json.Unmarshal(v, &f.Ids)
		case "kinds":
			err = json.Unmarshal(v, &f.Kinds)
		case "authors":
			err = json.Unmarshal(v, &f.Authors)
		case "since":
			err = json.Unmarshal(v, &f.Since)
		case "until":
			err = json.Unmarshal(v, &f.Until)
		case "limit":
			err = json.Unmarshal(v, &f.Limit)
		default:
			if IsTagKey(k) {
				var vals []string
				if err = json.Unmarshal(v, &vals); err == nil {
					f.Tags[k[1:]] = vals
				}
			}
		}
		if err != nil {
			return fmt.Errorf("filter key %q: %w", k, err)
		}
	}
	return
}

// MarshalJSON encodes a filter back to the wire form with "#X" tag keys.
func (f *F) MarshalJSON() (b []byte, err error) {
	raw := make(map[string]any)
	if len(f.Ids) > 0 {
		raw["ids"] = f.Ids
	}
	if len(f.Kinds) > 0 {
		raw["kinds"] = f.Kinds
	}
	if len(f.Authors) > 0 {
		raw["authors"] = f.Authors
	}
	if f.Since != nil {
		raw["since"] = *f.Since
	}
	if f.Until != nil {
		raw["until"] = *f.Until
	}
	if f.Limit != nil {
		raw["limit"] = *f.Limit
	}
	for k, v := range f.Tags {
		raw["#"+k] = v
	}
	return json.Marshal(raw)
}

// Validate performs the structural checks on a filter: hex id and author
// entries, non-negative limit, single-letter tag keys.
func (f *F) Validate() (err error) {
	for _, id := range f.Ids {
		if len(id) != 64 || !event.IsLowerHex(id) {
			return reason.Invalid.Err("filter id %q is not 64 lowercase hex", id)
		}
	}
	for _, a := range f.Authors {
		if len(a) != 64 || !event.IsLowerHex(a) {
			return reason.Invalid.Err("filter author %q is not 64 lowercase hex", a)
		}
	}
	if f.Limit != nil && *f.Limit < 0 {
		return reason.Invalid.Err("filter limit may not be negative")
	}
	for k := range f.Tags {
		if !IsTagKey("#" + k) {
			return reason.Invalid.Err("filter tag key %q is not a single letter", k)
		}
	}
	return
}

// Match reports whether an event satisfies every predicate of the filter.
// Limit is not applied by the matcher.
func (f *F) Match(ev *event.E) bool {
	if ev == nil {
		return false
	}
	if len(f.Ids) > 0 && !containsString(f.Ids, ev.Id) {
		return false
	}
	if len(f.Authors) > 0 && !containsString(f.Authors, ev.Pubkey) {
		return false
	}
	if len(f.Kinds) > 0 && !containsInt(f.Kinds, ev.Kind) {
		return false
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	for name, vals := range f.Tags {
		// an empty value set imposes no constraint, same as the query
		// compiler
		if len(vals) == 0 {
			continue
		}
		if !matchTag(ev, name, vals) {
			return false
		}
	}
	return true
}

// Match reports whether any filter in the set matches the event.
func (ff S) Match(ev *event.E) bool {
	for _, f := range ff {
		if f.Match(ev) {
			return true
		}
	}
	return false
}

func matchTag(ev *event.E, name string, vals []string) bool {
	for _, t := range ev.Tags {
		if len(t) > 1 && t[0] == name && containsString(vals, t[1]) {
			return true
		}
	}
	return false
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(set []int, n int) bool {
	for _, v := range set {
		if v == n {
			return true
		}
	}
	return false
}
