package dependencies

import (
	"sync"

	"manifesthub/internal/auth"
	"manifesthub/internal/database"
	env "manifesthub/internal/secret"
)

// all dependencies required by this app
type Dependencies struct {
	EnvManager  *env.Manager
	ManifestDB  database.ManifestRepository
	ScheduleDB  database.ScheduleRepository
	VesselLogDB database.VesselLogRepository
	Cache       database.CacheRepository
	Tokens      *auth.TokenService
}

// dependenciesInstance holds the singleton instance of Dependencies.
var (
	dependenciesInstance *Dependencies
	once                 sync.Once
	initErr              error
)

// NewDependencies initializes dependencies only once and returns the same instance on subsequent calls.
func NewDependencies() (*Dependencies, error) {
	once.Do(func() {
		// Initialize environment manager
		envManager, err := env.NewManager()
		if err != nil {
			initErr = err
			return
		}

		// Initialize Redis connection
		redisSettings := database.RedisSettings{
			DB:         envManager.RedisDb,
			DBUser:     envManager.RedisUser,
			DBPassword: envManager.RedisPw,
			Host:       envManager.RedisHost,
			Port:       envManager.RedisPort,
			Protocol:   envManager.RedisPrtl,
		}
		redis, err := database.NewRedisConnection(redisSettings)
		if err != nil {
			initErr = err
			return
		}

		// Initialize Oracle database connection
		oracleSetting := database.OracleSettings{
			DBUser:      envManager.DbUser,
			DBPassword:  envManager.DbPw,
			Host:        envManager.Host,
			Port:        envManager.Port,
			ServiceName: envManager.ServiceName,
		}
		oracle, err := database.NewOracleDBConnectionPool(oracleSetting, 100, 3)
		if err != nil {
			initErr = err
			return
		}

		// Set the singleton instance
		dependenciesInstance = &Dependencies{
			EnvManager:  envManager,
			ManifestDB:  oracle,
			ScheduleDB:  oracle,
			VesselLogDB: oracle,
			Cache:       redis,
			Tokens:      auth.NewTokenService(envManager),
		}
	})

	if initErr != nil {
		return nil, initErr
	}

	return dependenciesInstance, nil
}
