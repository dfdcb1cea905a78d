package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/potgreen/nursery-backend/internal/domains/orders/adapters/notify/amqp"
	"github.com/potgreen/nursery-backend/internal/domains/orders/application"
)

// Notifier backends selectable with NOTIFIER.
const (
	NotifierLog      = "log"
	NotifierAMQP     = "amqp"
	NotifierTemporal = "temporal"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	StoreTimeout      time.Duration
	JWTSecret         string
	JWTIssuer         string
	JWTAudience       string
	AccessPolicyFile  string
	RateLimitRPS      float64
	RateLimitBurst    int
	Notifier          string
	AMQPURL           string
	AMQPExchange      string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	CORSOrigins       []string
	SeedOrders        bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		StoreTimeout:      application.DefaultStoreTimeout,
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:         strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		JWTAudience:       strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
		AccessPolicyFile:  strings.TrimSpace(os.Getenv("ACCESS_POLICY_FILE")),
		RateLimitBurst:    20,
		RateLimitRPS:      10,
		Notifier:          strings.ToLower(envDefault("NOTIFIER", NotifierLog)),
		AMQPURL:           strings.TrimSpace(os.Getenv("AMQP_URL")),
		AMQPExchange:      envDefault("AMQP_EXCHANGE", amqp.DefaultExchange),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		CORSOrigins:       splitList(envDefault("CORS_ORIGIN", "http://localhost:5173")),
		SeedOrders:        isTruthy(os.Getenv("SEED_ORDERS")),
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if raw := strings.TrimSpace(os.Getenv("ORDER_STORE_TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return Config{}, fmt.Errorf("ORDER_STORE_TIMEOUT must be a positive duration")
		}
		cfg.StoreTimeout = timeout
	}
	if raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps < 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_RPS must be a non-negative number")
		}
		cfg.RateLimitRPS = rps
	}
	if raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil || burst <= 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer")
		}
		cfg.RateLimitBurst = burst
	}
	switch cfg.Notifier {
	case NotifierLog, NotifierTemporal:
	case NotifierAMQP:
		if cfg.AMQPURL == "" {
			return Config{}, errors.New("AMQP_URL is required when NOTIFIER=amqp")
		}
	default:
		return Config{}, fmt.Errorf("NOTIFIER must be one of %s, %s, %s", NotifierLog, NotifierAMQP, NotifierTemporal)
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
