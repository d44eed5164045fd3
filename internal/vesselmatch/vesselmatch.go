// Package vesselmatch resolves manifest rows against port schedule entries by
// normalized vessel name and derives the earliest ETA per matched vessel.
package vesselmatch

import (
	"sort"
	"strings"

	"manifesthub/internal/schema"
)

// VesselGroup aggregates every schedule entry sharing one normalized vessel
// name across ports. Built fresh for each mapping run, never persisted.
type VesselGroup struct {
	Dates        []string
	Ports        map[string]struct{}
	OriginalName string
}

// Normalize canonicalizes a free-text vessel name into a comparison key:
// uppercase, ASCII letters and digits only. The empty string is never a
// valid grouping key; callers must skip it.
func Normalize(name string) string {
	upper := strings.ToUpper(name)
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Aggregate groups schedule records by normalized vessel name. Records whose
// name normalizes to the empty string are skipped. ETA values equal to the
// "-" sentinel are not collected. When several spellings collapse onto one
// key, OriginalName keeps whichever spelling was seen first in input order.
func Aggregate(records []schema.ScheduleRecord) map[string]*VesselGroup {
	groups := make(map[string]*VesselGroup, len(records))
	for _, rec := range records {
		key := Normalize(rec.Vessel)
		if key == "" {
			continue
		}
		group, ok := groups[key]
		if !ok {
			group = &VesselGroup{
				Ports:        make(map[string]struct{}),
				OriginalName: rec.Vessel,
			}
			groups[key] = group
		}
		if rec.ETA != "" && rec.ETA != schema.ETAUnknown {
			group.Dates = append(group.Dates, rec.ETA)
		}
		group.Ports[rec.Port] = struct{}{}
	}
	return groups
}

// Resolve maps a manifest vessel name to its schedule group. An exact match
// on the normalized key always wins. Failing that, the first key containing
// the input key as a substring (or contained by it) is taken, in map
// iteration order. The containment fallback tolerates partial names and typo
// variance; it has no similarity threshold and ties are broken arbitrarily.
func Resolve(manifestVesselName string, groups map[string]*VesselGroup) *VesselGroup {
	key := Normalize(manifestVesselName)
	if key == "" {
		return nil
	}
	if group, ok := groups[key]; ok {
		return group
	}
	for candidate, group := range groups {
		if strings.Contains(candidate, key) || strings.Contains(key, candidate) {
			return group
		}
	}
	return nil
}

// ComposeETA renders a matched group as "<earliest-date> <port codes>", e.g.
// "2026-02-15 B G". The earliest date is picked by lexicographic order, which
// coincides with chronological order because the schedule parser normalizes
// every date to YYYY-MM-DD. Calling this on a group with no dates is a
// precondition violation.
func ComposeETA(group *VesselGroup) string {
	if len(group.Dates) == 0 {
		panic("vesselmatch: ComposeETA called on group with no dates")
	}
	earliest := group.Dates[0]
	for _, d := range group.Dates[1:] {
		if d < earliest {
			earliest = d
		}
	}
	codes := make([]string, 0, len(group.Ports))
	for port := range group.Ports {
		codes = append(codes, strings.ToUpper(port[:1]))
	}
	sort.Strings(codes)
	return earliest + " " + strings.Join(codes, " ")
}
