package middleware

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"manifesthub/config/domain"
	"manifesthub/internal/exceptions"
)

type appConfigContextKey string

// AppConfigKey holds the merged service config (upload limits, cache TTLs)
// for the handlers behind this middleware.
const AppConfigKey appConfigContextKey = "appConfig"

// GetAppConfig loads config.yaml on every request so that config edits take
// effect without a restart.
func GetAppConfig(serviceName string) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			config := domain.Config{}
			currentDir, err := os.Getwd()
			if err != nil {
				log.Fatalf("Failed to setup config: %v", err)
			}
			data, err := os.ReadFile(filepath.Join(currentDir, "config.yaml"))
			if err != nil {
				exceptions.InternalErrorHandler(w, err)
				return
			}
			if err := config.SetFromBytes(data); err != nil {
				exceptions.InternalErrorHandler(w, err)
				return
			}
			result, err := config.Get(serviceName)
			if err != nil {
				exceptions.InternalErrorHandler(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), AppConfigKey, result)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
