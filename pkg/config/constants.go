package config

const (
	// EnvPrefix namespaces every environment variable the app reads.
	EnvPrefix = "EQUIHERDS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "EQUIHERDS_DB_DSN"
	EnvDBHost = "EQUIHERDS_DB_HOST"
	EnvDBUser = "EQUIHERDS_DB_USER"
	EnvDBName = "EQUIHERDS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
