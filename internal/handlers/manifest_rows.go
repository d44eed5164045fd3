package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"manifesthub/internal/database"
	"manifesthub/internal/exceptions"
	"manifesthub/internal/middleware"
	"manifesthub/internal/schema"
)

const queryTimeout = 7 * time.Second

// ListRowsHandler serves the whole master database, read through the cache.
func ListRowsHandler(or database.ManifestRepository, cache database.CacheRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := cache.Get(rowsNamespace, cacheKeyAll); ok {
			_, _ = w.Write(cached)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		rows, err := or.AllRows(ctx)
		if err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database query failed: %v", err))
			return
		}
		responseJSON, err := json.Marshal(map[string]any{"rows": rows})
		if err != nil {
			exceptions.InternalErrorHandler(w, err)
			return
		}
		_, _ = w.Write(responseJSON)
		cache.AddToChannel(rowsNamespace, cacheKeyAll, responseJSON, cacheTTL)
		go cache.Set(r.URL.String())
	})
}

// SaveRowsHandler persists uploaded rows, stamping today's date on rows that
// carry no upload date yet.
func SaveRowsHandler(or database.ManifestRepository, cache database.CacheRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := middleware.BodyFrom[schema.SaveRowsRequest](r, middleware.SaveRowsBodyKey)
		if !ok {
			exceptions.InternalErrorHandler(w, errors.New("save body missing from request context"))
			return
		}
		today := time.Now().Format("2006-01-02")
		for i := range body.Rows {
			if body.Rows[i].UploadDate == "" {
				body.Rows[i].UploadDate = today
			}
		}
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		saved, err := or.InsertRows(ctx, body.Rows)
		if err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database insert failed: %v", err))
			return
		}
		cache.Invalidate(rowsNamespace, cacheKeyAll)
		_ = json.NewEncoder(w).Encode(map[string]any{"saved": len(saved), "rows": saved})
	})
}

// UpdateRowHandler applies a field-by-field edit to one persisted row. Column
// names follow the sheet headers; unknown columns land in the extra map. A
// manual ETA edit clears the mapped flag so the next mapping pass treats the
// value as operator-entered.
func UpdateRowHandler(or database.ManifestRepository, cache database.CacheRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := middleware.BodyFrom[schema.UpdateRowRequest](r, middleware.UpdateRowBodyKey)
		if !ok {
			exceptions.InternalErrorHandler(w, errors.New("update body missing from request context"))
			return
		}
		id := r.PathValue("id")
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		row, err := or.Row(ctx, id)
		if err != nil {
			exceptions.NotFoundErrorHandler(w, fmt.Errorf("row %s not found: %v", id, err))
			return
		}
		for column, value := range body.Fields {
			applyField(&row, column, value)
		}
		if err := or.UpdateRow(ctx, row); err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database update failed: %v", err))
			return
		}
		cache.Invalidate(rowsNamespace, cacheKeyAll)
		_ = json.NewEncoder(w).Encode(map[string]any{"row": row})
	})
}

// DeleteRowsHandler removes the requested rows in one transaction.
func DeleteRowsHandler(or database.ManifestRepository, cache database.CacheRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := middleware.BodyFrom[schema.DeleteRowsRequest](r, middleware.DeleteRowsBodyKey)
		if !ok {
			exceptions.InternalErrorHandler(w, errors.New("delete body missing from request context"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		if err := or.DeleteRows(ctx, body.IDs); err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database delete failed: %v", err))
			return
		}
		cache.Invalidate(rowsNamespace, cacheKeyAll)
		_ = json.NewEncoder(w).Encode(map[string]any{"deleted": len(body.IDs)})
	})
}

func applyField(row *schema.ManifestRow, column, value string) {
	switch strings.TrimSpace(column) {
	case schema.HeaderClient:
		row.Client = value
	case schema.HeaderVesselName:
		row.VesselName = value
	case schema.HeaderSupplier:
		row.Supplier = value
	case schema.HeaderShipper:
		row.Shipper = value
	case schema.HeaderPONo:
		row.PONo = value
	case schema.HeaderETA:
		row.ETA = value
		row.IsMapped = false
	case schema.HeaderStored:
		row.Stored = value
	case "":
	default:
		if row.Extra == nil {
			row.Extra = make(map[string]string)
		}
		row.Extra[column] = value
	}
}
