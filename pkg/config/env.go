package config

import "time"

const EnvPrefix = "STOCKROOM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DefaultSQLiteDSN = "file:stockroom.db?_foreign_keys=on"

	PasswordAlgorithmBcrypt   = "bcrypt"
	PasswordAlgorithmArgon2id = "argon2id"

	AuditModeBestEffort = "best_effort"
	AuditModeStrict     = "strict"

	DefaultAccessTokenTTL = 30 * time.Minute
)

const (
	EnvAppEnv            = "STOCKROOM_APP_ENV"
	EnvPort              = "STOCKROOM_APP_PORT"
	EnvLogLevel          = "STOCKROOM_LOG_LEVEL"
	EnvDBDSN             = "STOCKROOM_DB_DSN"
	EnvDBDriver          = "STOCKROOM_DB_DRIVER"
	EnvDBHost            = "STOCKROOM_DB_HOST"
	EnvDBUser            = "STOCKROOM_DB_USER"
	EnvDBName            = "STOCKROOM_DB_NAME"
	EnvRedisURL          = "STOCKROOM_REDIS_URL"
	EnvJWTSecret         = "STOCKROOM_JWT_SECRET"
	EnvJWTSecretFile     = "STOCKROOM_JWT_SECRET_FILE"
	EnvJWTIssuer         = "STOCKROOM_JWT_ISSUER"
	EnvJWTExpMins        = "STOCKROOM_JWT_EXPIRATION_MINUTES"
	EnvPasswordAlgorithm = "STOCKROOM_PASSWORD_ALGORITHM"
	EnvAuditMode         = "STOCKROOM_AUDIT_MODE"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
