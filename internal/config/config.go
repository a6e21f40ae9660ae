package config

import (
	"os"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// RedeemBackend selects where single-use token redemption is recorded:
	// memory | redis | sql. Multi-instance deployments need redis or sql.
	RedeemBackend string
	RedisAddr     string

	AuthHMACSecret  string
	TimeProofSecret string
	TimeProofTTL    time.Duration

	// CallTimeout bounds every collaborator call made by the gateway.
	CallTimeout time.Duration

	// Reward policy knobs (only used by the in-repo reward backend).
	MinElapsed  time.Duration
	RetryWeight float64

	EnableLocalAuth      bool
	EnableLocalTimeProof bool

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: addr,

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		RedeemBackend: envOr("REDEEM_BACKEND", "sql"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),

		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TimeProofSecret: envOr("TIMEPROOF_HMAC_SECRET", "timeproof-dev-key"),
		TimeProofTTL:    envDur("TIMEPROOF_TTL", 2*time.Hour),

		CallTimeout: envDur("CALL_TIMEOUT", 10*time.Second),

		MinElapsed:  envDur("REWARD_MIN_ELAPSED", 5*time.Second),
		RetryWeight: 0.5,

		EnableLocalAuth:      envBool("ENABLE_LOCAL_AUTH", true),
		EnableLocalTimeProof: envBool("ENABLE_LOCAL_TIMEPROOF", true),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://learn.wealthpath.app"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
