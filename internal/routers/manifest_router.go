package routers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"manifesthub/internal/dependencies"
	"manifesthub/internal/handlers"
	"manifesthub/internal/middleware"
	"manifesthub/internal/schema"
)

// ManifestRouter serves the master database dashboard: row CRUD, sheet
// upload, the ETA mapping pass, the analysis recap and the vessel activity
// log. Every endpoint except login requires a bearer token.
func ManifestRouter() http.Handler {
	deps, err := dependencies.NewDependencies()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize dependencies")
		return nil
	}
	base := []middleware.Middleware{
		middleware.Recovery,
		middleware.CheckCORS,
		middleware.AddCorrelationID,
		middleware.AddHeaders,
	}
	guarded := func(extra ...middleware.Middleware) middleware.Middleware {
		stack := append([]middleware.Middleware{}, base...)
		stack = append(stack, middleware.Authenticate(deps.Tokens))
		stack = append(stack, extra...)
		stack = append(stack, middleware.Logging)
		return middleware.CreateStack(stack...)
	}
	loginStack := middleware.CreateStack(append(append([]middleware.Middleware{}, base...),
		middleware.ValidateJSONBody[schema.LoginRequest](middleware.LoginBodyKey),
		middleware.Logging)...)

	manifestRouter := http.NewServeMux()
	manifestRouter.Handle("POST /auth/login", loginStack(handlers.LoginHandler(deps.Tokens)))

	manifestRouter.Handle("GET /manifest/rows",
		guarded()(handlers.ListRowsHandler(deps.ManifestDB, deps.Cache)))
	manifestRouter.Handle("POST /manifest/rows",
		guarded(middleware.ValidateJSONBody[schema.SaveRowsRequest](middleware.SaveRowsBodyKey))(
			handlers.SaveRowsHandler(deps.ManifestDB, deps.Cache)))
	manifestRouter.Handle("PUT /manifest/rows/{id}",
		guarded(middleware.ValidateJSONBody[schema.UpdateRowRequest](middleware.UpdateRowBodyKey))(
			handlers.UpdateRowHandler(deps.ManifestDB, deps.Cache)))
	manifestRouter.Handle("DELETE /manifest/rows",
		guarded(middleware.ValidateJSONBody[schema.DeleteRowsRequest](middleware.DeleteRowsBodyKey))(
			handlers.DeleteRowsHandler(deps.ManifestDB, deps.Cache)))
	manifestRouter.Handle("POST /manifest/upload",
		guarded(middleware.GetAppConfig("service.registry.manifest"))(handlers.UploadManifestHandler()))
	manifestRouter.Handle("POST /manifest/apply-eta",
		guarded()(handlers.ApplyMappingHandler(deps.ManifestDB, deps.ScheduleDB, deps.Cache)))
	manifestRouter.Handle("GET /manifest/analysis",
		guarded()(handlers.AnalysisHandler(deps.ManifestDB)))

	manifestRouter.Handle("POST /logs",
		guarded(middleware.ValidateJSONBody[schema.VesselLogRequest](middleware.VesselLogBodyKey))(
			handlers.LogActivityHandler(deps.VesselLogDB)))
	manifestRouter.Handle("GET /logs",
		guarded()(handlers.RecentLogsHandler(deps.VesselLogDB)))
	return manifestRouter
}
