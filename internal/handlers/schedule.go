package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"manifesthub/internal/clipboard"
	"manifesthub/internal/database"
	"manifesthub/internal/exceptions"
)

// ListSchedulesHandler serves every stored schedule record, read through the
// cache.
func ListSchedulesHandler(sr database.ScheduleRepository, cache database.CacheRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := cache.Get(schedulesNamespace, cacheKeyAll); ok {
			_, _ = w.Write(cached)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		records, err := sr.AllSchedules(ctx)
		if err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database query failed: %v", err))
			return
		}
		responseJSON, err := json.Marshal(map[string]any{"schedules": records})
		if err != nil {
			exceptions.InternalErrorHandler(w, err)
			return
		}
		_, _ = w.Write(responseJSON)
		cache.AddToChannel(schedulesNamespace, cacheKeyAll, responseJSON, cacheTTL)
		go cache.Set(r.URL.String())
	})
}

// PasteScheduleHandler replaces one port's schedule with the parsed rows of a
// pasted board. The body is raw text; EUC-KR paste bytes are transcoded
// before parsing.
func PasteScheduleHandler(sr database.ScheduleRepository, cache database.CacheRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		port := r.PathValue("port")
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
		if err != nil {
			exceptions.RequestErrorHandler(w, fmt.Errorf("could not read pasted schedule: %v", err))
			return
		}
		records := clipboard.ParseSchedules(port, clipboard.DecodeText(raw))
		if len(records) == 0 {
			exceptions.RequestErrorHandler(w, fmt.Errorf("no schedule rows found in paste for %s", port))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		if err := sr.ClearPort(ctx, port); err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database delete failed: %v", err))
			return
		}
		if err := sr.InsertSchedules(ctx, records); err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database insert failed: %v", err))
			return
		}
		cache.Invalidate(schedulesNamespace, cacheKeyAll)
		_ = json.NewEncoder(w).Encode(map[string]any{"port": port, "saved": len(records)})
	})
}

// ClearPortHandler drops every schedule record of one port.
func ClearPortHandler(sr database.ScheduleRepository, cache database.CacheRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		port := r.PathValue("port")
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		if err := sr.ClearPort(ctx, port); err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database delete failed: %v", err))
			return
		}
		cache.Invalidate(schedulesNamespace, cacheKeyAll)
		_ = json.NewEncoder(w).Encode(map[string]string{"port": port, "message": "Schedule cleared"})
	})
}
