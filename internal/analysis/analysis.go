// Package analysis builds the dashboard recaps over the master row set:
// vessel arrival timeline, supplier and shipper groupings, storage summary.
package analysis

import (
	"sort"
	"strings"
	"time"

	"manifesthub/internal/schema"
)

// Summary counts the master rows by warehouse storage state.
type Summary struct {
	Total      int `json:"total"`
	Loaded     int `json:"loaded"`
	ToBeLoaded int `json:"toBeLoaded"`
}

// TimelineGroup collects the rows of one vessel arriving on one date. The
// date is the leading date token of the row ETA, without port codes.
type TimelineGroup struct {
	Vessel string               `json:"vessel"`
	ETA    string               `json:"eta"`
	Count  int                  `json:"count"`
	Rows   []schema.ManifestRow `json:"rows"`
}

// NamedGroup collects the rows sharing one supplier or shipper.
type NamedGroup struct {
	Name  string               `json:"name"`
	Count int                  `json:"count"`
	Rows  []schema.ManifestRow `json:"rows"`
}

// Recap is the full analysis view. Timeline is ordered by proximity to
// today, Calendar chronologically, Suppliers and Shippers alphabetically.
type Recap struct {
	Summary   Summary         `json:"summary"`
	Timeline  []TimelineGroup `json:"timeline"`
	Calendar  []TimelineGroup `json:"calendar"`
	Suppliers []NamedGroup    `json:"suppliers"`
	Shippers  []NamedGroup    `json:"shippers"`
}

// Filter keeps the rows whose supplier and shipper contain the given terms,
// case-insensitively. Empty terms match everything.
func Filter(rows []schema.ManifestRow, supplier, shipper string) []schema.ManifestRow {
	supplierTerm := strings.ToUpper(supplier)
	shipperTerm := strings.ToUpper(shipper)
	filtered := make([]schema.ManifestRow, 0, len(rows))
	for _, row := range rows {
		if supplierTerm != "" && !strings.Contains(strings.ToUpper(row.Supplier), supplierTerm) {
			continue
		}
		if shipperTerm != "" && !strings.Contains(strings.ToUpper(row.Shipper), shipperTerm) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// Summarize counts rows stored in the warehouse (Stored == "Y") against the
// total.
func Summarize(rows []schema.ManifestRow) Summary {
	s := Summary{Total: len(rows)}
	for _, row := range rows {
		if row.Stored == "Y" {
			s.Loaded++
		}
	}
	s.ToBeLoaded = s.Total - s.Loaded
	return s
}

// BuildRecap groups the given rows into the full analysis view relative to
// today's date.
func BuildRecap(rows []schema.ManifestRow, today time.Time) Recap {
	today = today.Truncate(24 * time.Hour)

	timelineIndex := make(map[string]*TimelineGroup)
	supplierIndex := make(map[string]*NamedGroup)
	shipperIndex := make(map[string]*NamedGroup)

	for _, row := range rows {
		vessel := row.VesselName
		if vessel == "" {
			vessel = "Unknown"
		}
		eta := etaDate(row.ETA)
		key := vessel + "|" + eta
		group, ok := timelineIndex[key]
		if !ok {
			group = &TimelineGroup{Vessel: vessel, ETA: eta}
			timelineIndex[key] = group
		}
		group.Count++
		group.Rows = append(group.Rows, row)

		addNamed(supplierIndex, row.Supplier, row)
		addNamed(shipperIndex, row.Shipper, row)
	}

	timeline := make([]TimelineGroup, 0, len(timelineIndex))
	for _, g := range timelineIndex {
		timeline = append(timeline, *g)
	}

	calendar := make([]TimelineGroup, len(timeline))
	copy(calendar, timeline)

	sort.SliceStable(timeline, func(i, j int) bool {
		return proximityLess(timeline[i], timeline[j], today)
	})
	sort.SliceStable(calendar, func(i, j int) bool {
		return chronologicalLess(calendar[i], calendar[j])
	})

	return Recap{
		Summary:   Summarize(rows),
		Timeline:  timeline,
		Calendar:  calendar,
		Suppliers: sortedNamed(supplierIndex),
		Shippers:  sortedNamed(shipperIndex),
	}
}

// etaDate strips the port-code suffix a mapping pass may have appended.
func etaDate(eta string) string {
	date, _, _ := strings.Cut(eta, " ")
	return date
}

func addNamed(index map[string]*NamedGroup, name string, row schema.ManifestRow) {
	if name == "" {
		name = "N/A"
	}
	group, ok := index[name]
	if !ok {
		group = &NamedGroup{Name: name}
		index[name] = group
	}
	group.Count++
	group.Rows = append(group.Rows, row)
}

func sortedNamed(index map[string]*NamedGroup) []NamedGroup {
	groups := make([]NamedGroup, 0, len(index))
	for _, g := range index {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups
}

func parseETA(eta string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", eta)
	return d, err == nil
}

// proximityLess orders groups by distance of their ETA from today, closest
// first; groups without a parsable date sink to the end; equal distances
// break towards the later date.
func proximityLess(a, b TimelineGroup, today time.Time) bool {
	dateA, okA := parseETA(a.ETA)
	dateB, okB := parseETA(b.ETA)
	if !okA {
		return false
	}
	if !okB {
		return true
	}
	diffA := dateA.Sub(today).Abs()
	diffB := dateB.Sub(today).Abs()
	if diffA != diffB {
		return diffA < diffB
	}
	return dateA.After(dateB)
}

func chronologicalLess(a, b TimelineGroup) bool {
	dateA, okA := parseETA(a.ETA)
	dateB, okB := parseETA(b.ETA)
	if !okA {
		return false
	}
	if !okB {
		return true
	}
	return dateA.Before(dateB)
}
