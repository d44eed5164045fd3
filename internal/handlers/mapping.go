package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"manifesthub/internal/database"
	"manifesthub/internal/exceptions"
	"manifesthub/internal/schema"
	"manifesthub/internal/vesselmatch"
)

// MappingResponse reports one mapping pass. Exactly one of the outcomes
// applies: no schedule data to match against, no rows changed, or rows
// changed with their count. PersistWarning is set when the in-memory pass
// succeeded but the batched write-back did not; the composed ETAs are still
// reported and the pass can simply be run again.
type MappingResponse struct {
	Outcome        string `json:"outcome"`
	UpdatedCount   int    `json:"updatedCount"`
	Message        string `json:"message"`
	PersistWarning string `json:"persistWarning,omitempty"`
}

const (
	OutcomeNoScheduleData = "noScheduleData"
	OutcomeNoMatches      = "noMatches"
	OutcomeMapped         = "mapped"
)

// ApplyMappingHandler runs the vessel matching pass over the whole master
// database and writes the composed ETAs back in one batch.
func ApplyMappingHandler(or database.ManifestRepository, sr database.ScheduleRepository, cache database.CacheRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		rows, err := or.AllRows(ctx)
		if err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database query failed: %v", err))
			return
		}
		records, err := sr.AllSchedules(ctx)
		if err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database query failed: %v", err))
			return
		}

		rowRefs := make([]*schema.ManifestRow, 0, len(rows))
		for i := range rows {
			rowRefs = append(rowRefs, &rows[i])
		}
		result, err := vesselmatch.ApplyMapping(rowRefs, records)
		if errors.Is(err, vesselmatch.ErrNoScheduleData) {
			_ = json.NewEncoder(w).Encode(MappingResponse{
				Outcome: OutcomeNoScheduleData,
				Message: "No schedule data available, paste a port schedule first",
			})
			return
		}
		if err != nil {
			exceptions.InternalErrorHandler(w, err)
			return
		}
		if result.UpdatedCount == 0 {
			_ = json.NewEncoder(w).Encode(MappingResponse{
				Outcome: OutcomeNoMatches,
				Message: "No manifest rows matched the current schedules",
			})
			return
		}

		response := MappingResponse{
			Outcome:      OutcomeMapped,
			UpdatedCount: result.UpdatedCount,
			Message:      fmt.Sprintf("Mapped ETA for %d rows", result.UpdatedCount),
		}
		if len(result.Updates) > 0 {
			if err := or.BatchUpdateETAs(ctx, result.Updates); err != nil {
				log.Errorf("mapping persistence failed: %v", err)
				response.PersistWarning = fmt.Sprintf("mapped values were not saved: %v", err)
			} else {
				cache.Invalidate(rowsNamespace, cacheKeyAll)
			}
		}
		_ = json.NewEncoder(w).Encode(response)
	})
}
