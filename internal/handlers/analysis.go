package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"manifesthub/internal/analysis"
	"manifesthub/internal/database"
	"manifesthub/internal/exceptions"
)

// AnalysisHandler builds the dashboard recap over the master rows, optionally
// narrowed by supplier and shipper query terms.
func AnalysisHandler(or database.ManifestRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		rows, err := or.AllRows(ctx)
		if err != nil {
			exceptions.InternalErrorHandler(w, fmt.Errorf("database query failed: %v", err))
			return
		}
		filtered := analysis.Filter(rows, r.URL.Query().Get("supplier"), r.URL.Query().Get("shipper"))
		recap := analysis.BuildRecap(filtered, time.Now())
		_ = json.NewEncoder(w).Encode(recap)
	})
}
