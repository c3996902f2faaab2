package global

import (
	"time"

	"github.com/anandbobba/Innovex-Service/tools"
)

// AppConfig is the full environment surface of the service. Loaded once at
// startup; nothing re-reads the environment after that.
type AppConfig struct {
	Port          string
	MongoURI      string
	MongoDB       string
	MongoInsecure bool // retry TLS handshake with verification relaxed (dev only)

	AllowedOrigin string
	SpocPIN       string
	TestToken     string // shared-secret header fallback for mutating calls

	SessionTTL time.Duration

	RedisAddr string // optional: external session store
	NatsURL   string // optional: cross-instance broadcast relay

	TeamsJSON string // optional: static team directory override
}

func LoadConfig() *AppConfig {
	return &AppConfig{
		Port:          tools.GetEnv("PORT", "8080"),
		MongoURI:      tools.GetEnv("MONGODB_URI", ""),
		MongoDB:       tools.GetEnv("MONGODB_DB", "innovex"),
		MongoInsecure: tools.GetEnvBool("MONGODB_TLS_INSECURE", false),
		AllowedOrigin: tools.GetEnv("ALLOWED_ORIGIN", "*"),
		SpocPIN:       tools.GetEnv("SPOC_PIN", "2468"),
		TestToken:     tools.GetEnv("TEST_ACCESS_TOKEN", ""),
		SessionTTL:    time.Duration(tools.GetEnvInt("SESSION_TTL_MIN", 15)) * time.Minute,
		RedisAddr:     tools.GetEnv("REDIS_ADDR", ""),
		NatsURL:       tools.GetEnv("NATS_URL", ""),
		TeamsJSON:     tools.GetEnv("TEAMS_JSON", ""),
	}
}
