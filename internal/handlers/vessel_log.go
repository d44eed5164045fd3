package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"manifesthub/internal/database"
	"manifesthub/internal/exceptions"
	"manifesthub/internal/middleware"
	"manifesthub/internal/schema"
)

const defaultLogLimit = 50

// LogActivityHandler appends one vessel activity entry.
func LogActivityHandler(lr database.VesselLogRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := middleware.BodyFrom[schema.VesselLogRequest](r, middleware.VesselLogBodyKey)
		if !ok {
			exceptions.InternalErrorHandler(w, errors.New("log body missing from request context"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		id, err := lr.LogActivity(ctx, body.VesselName, body.Status)
		if err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database insert failed: %v", err))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
	})
}

// RecentLogsHandler returns the newest activity entries, up to the limit
// query parameter.
func RecentLogsHandler(lr database.VesselLogRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLogLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				exceptions.RequestErrorHandler(w, fmt.Errorf("invalid limit: %q", raw))
				return
			}
			limit = parsed
		}
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		logs, err := lr.RecentLogs(ctx, limit)
		if err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database query failed: %v", err))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"logs": logs})
	})
}
