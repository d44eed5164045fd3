package vesselmatch

import (
	"errors"

	"manifesthub/internal/schema"
)

// ErrNoScheduleData signals that a mapping pass was requested with no
// schedule entries loaded. Nothing is mutated in that case.
var ErrNoScheduleData = errors.New("no vessel schedule data available")

// MappingResult reports one mapping pass. UpdatedCount counts every row whose
// ETA actually changed (or was mapped for the first time); Updates carries
// the partial-update batch for the subset of those rows that are persisted.
type MappingResult struct {
	UpdatedCount int
	Updates      []schema.RowUpdate
}

// ApplyMapping runs one synchronous mapping pass over the manifest rows in
// their current order. Matched rows are mutated in place: ETA is overwritten
// with the composed value and IsMapped is set. A row only counts as updated
// when the composed ETA differs from its current one or the row was not yet
// mapped; matched-but-unchanged rows are a no-op. Rows without a durable ID
// are mutated but never emitted into the update batch.
func ApplyMapping(rows []*schema.ManifestRow, records []schema.ScheduleRecord) (*MappingResult, error) {
	if len(records) == 0 {
		return nil, ErrNoScheduleData
	}
	groups := Aggregate(records)

	result := &MappingResult{}
	for _, row := range rows {
		if Normalize(row.VesselName) == "" {
			continue
		}
		group := Resolve(row.VesselName, groups)
		if group == nil || len(group.Dates) == 0 {
			continue
		}
		newETA := ComposeETA(group)
		if row.ETA == newETA && row.IsMapped {
			continue
		}
		row.ETA = newETA
		row.IsMapped = true
		result.UpdatedCount++
		if row.Persisted() {
			result.Updates = append(result.Updates, schema.RowUpdate{
				ID:       row.ID,
				ETA:      newETA,
				IsMapped: true,
			})
		}
	}
	return result, nil
}
