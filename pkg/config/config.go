package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	Inventory    InventoryConfig
	Orders       OrdersConfig
	EventBus     EventBusConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Kafka        KafkaConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Messaging    MessagingConfig
	Cron         CronConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Inventory.validate(); err != nil {
		return nil, err
	}
	if err := cfg.EventBus.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORDERDESK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ORDERDESK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ORDERDESK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"ORDERDESK_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDERDESK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERDESK_DB_DSN"`
	Driver string `envconfig:"ORDERDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERDESK_DB_USER"`
	LegacyPassword string `envconfig:"ORDERDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"ORDERDESK_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"ORDERDESK_REDIS_KEY_PREFIX" default:"od"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ORDERDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ORDERDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ORDERDESK_JWT_EXPIRATION_MINUTES" default:"60"`
	// SessionCheck enables the Redis revocation lookup on every authenticated request.
	SessionCheck bool `envconfig:"ORDERDESK_JWT_SESSION_CHECK" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORDERDESK_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"ORDERDESK_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type InventoryConfig struct {
	OversellPolicy string `envconfig:"ORDERDESK_INVENTORY_OVERSELL_POLICY" default:"clamp"`
}

func (i InventoryConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(i.OversellPolicy)) {
	case OversellPolicyClamp, OversellPolicyReject:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvInventoryOversellPolicy, OversellPolicyClamp, OversellPolicyReject)
	}
}

type OrdersConfig struct {
	PendingTTL       time.Duration `envconfig:"ORDERDESK_ORDER_PENDING_TTL" default:"72h"`
	ReviewNudgeAfter time.Duration `envconfig:"ORDERDESK_ORDER_REVIEW_NUDGE_AFTER" default:"24h"`
	IdempotencyTTL   time.Duration `envconfig:"ORDERDESK_ORDER_IDEMPOTENCY_TTL" default:"24h"`
	TokenCreateTries int           `envconfig:"ORDERDESK_ORDER_TOKEN_CREATE_TRIES" default:"3"`
}

type EventBusConfig struct {
	Driver string `envconfig:"ORDERDESK_EVENT_BUS_DRIVER" default:"pubsub"`
}

func (e EventBusConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(e.Driver)) {
	case EventBusPubSub, EventBusKafka:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvEventBusDriver, EventBusPubSub, EventBusKafka)
	}
}

// UsesKafka reports whether the event bus is backed by Kafka.
func (e EventBusConfig) UsesKafka() bool {
	return strings.EqualFold(strings.TrimSpace(e.Driver), EventBusKafka)
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ORDERDESK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ORDERDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ORDERDESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic           string `envconfig:"ORDERDESK_PUBSUB_ORDERS_TOPIC" default:"orderdesk-order-events"`
	OrdersSubscription    string `envconfig:"ORDERDESK_PUBSUB_ORDERS_SUBSCRIPTION" default:"orderdesk-order-events-notifier"`
	AnalyticsTopic        string `envconfig:"ORDERDESK_PUBSUB_ANALYTICS_TOPIC" default:"orderdesk-analytics-events"`
	AnalyticsSubscription string `envconfig:"ORDERDESK_PUBSUB_ANALYTICS_SUBSCRIPTION" default:"orderdesk-analytics-events-sink"`
}

type KafkaConfig struct {
	Brokers       string        `envconfig:"ORDERDESK_KAFKA_BROKERS" default:"localhost:9092"`
	ConsumerGroup string        `envconfig:"ORDERDESK_KAFKA_CONSUMER_GROUP" default:"orderdesk"`
	BatchTimeout  time.Duration `envconfig:"ORDERDESK_KAFKA_BATCH_TIMEOUT" default:"10ms"`
}

// BrokerList splits the comma separated broker addresses.
func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, broker := range strings.Split(k.Brokers, ",") {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"ORDERDESK_BIGQUERY_DATASET" default:"orderdesk"`
	OrderEventsTable string `envconfig:"ORDERDESK_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"ORDERDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"ORDERDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"ORDERDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"ORDERDESK_OUTBOX_RETENTION" default:"720h"`
}

type MessagingConfig struct {
	BaseURL      string        `envconfig:"ORDERDESK_MESSAGING_BASE_URL"`
	APIToken     string        `envconfig:"ORDERDESK_MESSAGING_API_TOKEN"`
	SenderID     string        `envconfig:"ORDERDESK_MESSAGING_SENDER_ID"`
	Timeout      time.Duration `envconfig:"ORDERDESK_MESSAGING_TIMEOUT" default:"10s"`
	MaxAttempts  int           `envconfig:"ORDERDESK_MESSAGING_MAX_ATTEMPTS" default:"3"`
	RetryBackoff time.Duration `envconfig:"ORDERDESK_MESSAGING_RETRY_BACKOFF" default:"500ms"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ORDERDESK_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"ORDERDESK_CRON_LOCK_TTL" default:"4m"`
}

// RateLimitConfig throttles anonymous order creation per client IP.
type RateLimitConfig struct {
	OrderCreateLimit int           `envconfig:"ORDERDESK_RATE_LIMIT_ORDER_CREATE" default:"20"`
	Window           time.Duration `envconfig:"ORDERDESK_RATE_LIMIT_WINDOW" default:"1m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
