package config

const (
	EnvPrefix = "CRM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres   = "postgres"
	DriverSQLite     = "sqlite"
	DefaultSQLiteDSN = "file:crm.db?_foreign_keys=on"

	EnvAppEnv            = "CRM_APP_ENV"
	EnvPort              = "CRM_APP_PORT"
	EnvDBDSN             = "CRM_DB_DSN"
	EnvDBDriver          = "CRM_DB_DRIVER"
	EnvDBHost            = "CRM_DB_HOST"
	EnvDBUser            = "CRM_DB_USER"
	EnvDBName            = "CRM_DB_NAME"
	EnvDBPassword        = "CRM_DB_PASSWORD"
	EnvRedisURL          = "CRM_REDIS_URL"
	EnvUseSQLite         = "CRM_USE_SQLITE"
	EnvGraphQLEndpoint   = "CRM_GRAPHQL_ENDPOINT"
	EnvGraphQLTimeout    = "CRM_GRAPHQL_TIMEOUT"
	EnvLowStockThreshold = "CRM_LOW_STOCK_THRESHOLD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
