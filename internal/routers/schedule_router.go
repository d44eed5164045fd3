package routers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"manifesthub/internal/dependencies"
	"manifesthub/internal/handlers"
	"manifesthub/internal/middleware"
)

// ScheduleRouter serves the port schedule board: listing the stored records,
// replacing one port's board from a clipboard paste and clearing a port.
// Writes require a bearer token; reads and the health probe do not.
func ScheduleRouter() http.Handler {
	deps, err := dependencies.NewDependencies()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize dependencies")
		return nil
	}
	readStack := middleware.CreateStack(
		middleware.Recovery,
		middleware.CheckCORS,
		middleware.AddCorrelationID,
		middleware.AddHeaders,
		middleware.Logging,
	)
	writeStack := middleware.CreateStack(
		middleware.Recovery,
		middleware.CheckCORS,
		middleware.AddCorrelationID,
		middleware.AddHeaders,
		middleware.Authenticate(deps.Tokens),
		middleware.PortPathValidation,
		middleware.Logging,
	)
	healthStack := middleware.CreateStack(
		middleware.Recovery,
		middleware.AddCorrelationID,
		middleware.Logging,
		middleware.AddHeaders,
	)

	scheduleRouter := http.NewServeMux()
	scheduleRouter.Handle("GET /schedules", readStack(handlers.ListSchedulesHandler(deps.ScheduleDB, deps.Cache)))
	scheduleRouter.Handle("POST /schedules/{port}", writeStack(handlers.PasteScheduleHandler(deps.ScheduleDB, deps.Cache)))
	scheduleRouter.Handle("DELETE /schedules/{port}", writeStack(handlers.ClearPortHandler(deps.ScheduleDB, deps.Cache)))
	scheduleRouter.Handle("GET /health", healthStack(handlers.HealthCheckHandler(deps.VesselLogDB)))
	return scheduleRouter
}
