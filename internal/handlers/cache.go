package handlers

import "time"

// Cache namespaces shared by the list endpoints. Any write to a store
// invalidates its namespace so the next read repopulates the cache.
const (
	rowsNamespace      = "masterRows"
	schedulesNamespace = "vesselSchedules"
	cacheKeyAll        = "all"
	cacheTTL           = 10 * time.Minute
)
