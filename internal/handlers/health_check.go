package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"manifesthub/internal/database"
	"manifesthub/internal/exceptions"
)

func HealthCheckHandler(logs database.VesselLogRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := logs.Ping(ctx); err != nil {
			failedCheck := fmt.Errorf("health check failed on storage ping %s", err)
			exceptions.InternalErrorHandler(w, failedCheck)
			return
		}
		responseBody := map[string]string{"message": "Health check successful"}
		responseJSON, err := json.Marshal(responseBody)
		if err != nil {
			failedCheck := fmt.Errorf("health check failed in json marshal %s", err)
			exceptions.InternalErrorHandler(w, failedCheck)
			return
		}
		_, _ = w.Write(responseJSON)
	})
}
