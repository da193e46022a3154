package config

const (
	EnvPrefix = "ORDERDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	OversellPolicyClamp  = "clamp"
	OversellPolicyReject = "reject"

	EventBusPubSub = "pubsub"
	EventBusKafka  = "kafka"
)

const (
	EnvAppEnv    = "ORDERDESK_APP_ENV"
	EnvPort      = "ORDERDESK_APP_PORT"
	EnvLogLevel  = "ORDERDESK_LOG_LEVEL"
	EnvDBDSN     = "ORDERDESK_DB_DSN"
	EnvDBHost    = "ORDERDESK_DB_HOST"
	EnvDBUser    = "ORDERDESK_DB_USER"
	EnvDBName    = "ORDERDESK_DB_NAME"
	EnvRedisURL  = "ORDERDESK_REDIS_URL"
	EnvJWTSecret = "ORDERDESK_JWT_SECRET"
	EnvJWTIssuer = "ORDERDESK_JWT_ISSUER"

	EnvInventoryOversellPolicy = "ORDERDESK_INVENTORY_OVERSELL_POLICY"
	EnvEventBusDriver          = "ORDERDESK_EVENT_BUS_DRIVER"
	EnvKafkaBrokers            = "ORDERDESK_KAFKA_BROKERS"
	EnvOrderPendingTTL         = "ORDERDESK_ORDER_PENDING_TTL"
	EnvPubSubOrdersTopic       = "ORDERDESK_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
