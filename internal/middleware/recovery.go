package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"manifesthub/internal/exceptions"
)

func Recovery(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("Caught Panic : %v ,Stack Trace: %s", err, string(debug.Stack()))
				caughtPanic := fmt.Errorf("caught panic: %v", err)
				exceptions.InternalErrorHandler(w, caughtPanic)
				return
			}
		}()
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
