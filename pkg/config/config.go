package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Module = fx.Provide(NewConfig)

type IConfig interface {
	Get(key string) interface{}
	GetBool(key string) bool
	GetFloat64(key string) float64
	GetInt(key string) int
	GetInt64(key string) int64
	GetIntSlice(key string) []int
	GetString(key string) string
	GetStringMap(key string) map[string]interface{}
	GetStringMapString(key string) map[string]string
	UnmarshalKey(key string, val interface{}) error
	GetStringSlice(key string) []string
	GetDuration(key string) time.Duration
}

type config struct {
	cfg *viper.Viper
}

func NewConfig() IConfig {
	_ = godotenv.Load()

	cfg := viper.New()
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	_ = cfg.BindEnv("server.host", "SERVICE_HOST")
	_ = cfg.BindEnv("server.port", "SERVICE_HTTP_PORT")
	_ = cfg.BindEnv("server.base_url", "BASE_URL")
	_ = cfg.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")
	_ = cfg.BindEnv("database.dns", "DATABASE_DNS")
	_ = cfg.BindEnv("database.migration", "DATABASE_MIGRATION")
	_ = cfg.BindEnv("database.host", "POSTGRES_HOST")
	_ = cfg.BindEnv("database.user", "POSTGRES_USER")
	_ = cfg.BindEnv("database.password", "POSTGRES_PASSWORD")
	_ = cfg.BindEnv("database.dbname", "POSTGRES_DATABASE")
	_ = cfg.BindEnv("database.port", "POSTGRES_PORT")
	_ = cfg.BindEnv("database.pool_max_conns", "POSTGRES_MAX_CONNECTION")
	_ = cfg.BindEnv("database.pool_max_conn_lifetime", "POSTGRES_POOL_MAX_CONN_LIFETIME")
	_ = cfg.BindEnv("database.slow_query", "DATABASE_SLOW_QUERY")
	_ = cfg.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = cfg.BindEnv("redis.addrs", "REDIS_ADDRS")
	_ = cfg.BindEnv("redis.prefix", "REDIS_PREFIX")
	_ = cfg.BindEnv("gin.trusted_proxies", "GIN_TRUSTED_PROXIES")
	_ = cfg.BindEnv("log.level", "LOG_LEVEL")
	_ = cfg.BindEnv("bot.token", "TELEGRAM_BOT_TOKEN")
	_ = cfg.BindEnv("bot.pool_size", "BOT_POOL_SIZE")
	_ = cfg.BindEnv("bot.conversation_store", "BOT_CONVERSATION_STORE")
	_ = cfg.BindEnv("admin.master_id", "MASTER_ADMIN_ID")
	_ = cfg.BindEnv("payment.gateway", "PAYMENT_GATEWAY")
	_ = cfg.BindEnv("payment.require_signature", "PAYMENT_REQUIRE_SIGNATURE")
	_ = cfg.BindEnv("payment.timeout", "PAYMENT_TIMEOUT")
	_ = cfg.BindEnv("payment.max_attempts", "PAYMENT_MAX_ATTEMPTS")
	_ = cfg.BindEnv("payment.attempt_window", "PAYMENT_ATTEMPT_WINDOW")
	_ = cfg.BindEnv("ragapay.key", "RAGAPAY_KEY")
	_ = cfg.BindEnv("ragapay.password", "RAGAPAY_PASSWORD")
	_ = cfg.BindEnv("ragapay.endpoint", "RAGAPAY_ENDPOINT")
	_ = cfg.BindEnv("ragapay.signature_scheme", "RAGAPAY_SIGNATURE_SCHEME")
	_ = cfg.BindEnv("readies.merchant_email", "READIES_MERCHANT_EMAIL")
	_ = cfg.BindEnv("readies.public_key", "READIES_PUBLIC_KEY")
	_ = cfg.BindEnv("readies.private_key", "READIES_PRIVATE_KEY")
	_ = cfg.BindEnv("readies.ipn_secret", "READIES_IPN_SECRET")
	_ = cfg.BindEnv("readies.authorize_endpoint", "READIES_AUTHORIZE_ENDPOINT")
	_ = cfg.BindEnv("readies.transaction_endpoint", "READIES_TRANSACTION_ENDPOINT")
	_ = cfg.BindEnv("http.rate_limit", "HTTP_RATE_LIMIT")
	_ = cfg.BindEnv("http.rate_window", "HTTP_RATE_WINDOW")

	setDefaults(cfg)

	if addrs := os.Getenv("REDIS_ADDRS"); addrs != "" {
		cfg.Set("redis.addrs", strings.Split(addrs, ","))
	}

	ps := readPostgres(cfg)
	if cfg.GetString("database.dns") == "" {
		if dsn := ps.dsn(); dsn != "" {
			cfg.Set("database.dns", dsn)
		}
	}
	if cfg.GetString("database.migration") == "" {
		if u := ps.migrationURL(); u != "" {
			cfg.Set("database.migration", u)
		}
	}

	return &config{cfg: cfg}
}

func setDefaults(cfg *viper.Viper) {
	cfg.SetDefault("server.port", ":3000")
	cfg.SetDefault("server.base_url", "http://localhost:3000")
	cfg.SetDefault("log.level", "debug")
	cfg.SetDefault("database.slow_query", 500*time.Millisecond)
	cfg.SetDefault("bot.pool_size", 10)
	cfg.SetDefault("bot.conversation_store", "postgres")
	cfg.SetDefault("redis.prefix", "tgpay")
	cfg.SetDefault("payment.gateway", "ragapay")
	cfg.SetDefault("payment.timeout", 10*time.Second)
	cfg.SetDefault("payment.max_attempts", 3)
	cfg.SetDefault("payment.attempt_window", 5*time.Minute)
	cfg.SetDefault("ragapay.endpoint", "https://checkout.ragapay.com/api/v1/session")
	cfg.SetDefault("ragapay.signature_scheme", "sha1md5")
	cfg.SetDefault("readies.authorize_endpoint", "https://api.readies.biz/api/get_authorized_token")
	cfg.SetDefault("readies.transaction_endpoint", "https://api.readies.biz/api/create_transaction")
	cfg.SetDefault("http.rate_limit", 10)
	cfg.SetDefault("http.rate_window", time.Minute)
}

// NewWith builds a config from fixed values on top of the defaults. Environment is not read.
func NewWith(values map[string]interface{}) IConfig {
	cfg := viper.New()
	setDefaults(cfg)
	for k, v := range values {
		cfg.Set(k, v)
	}
	return &config{cfg: cfg}
}

func (c *config) Get(key string) interface{} {
	return c.cfg.Get(key)
}

func (c *config) GetBool(key string) bool {
	return c.cfg.GetBool(key)
}

func (c *config) GetFloat64(key string) float64 {
	return c.cfg.GetFloat64(key)
}

func (c *config) GetInt(key string) int {
	return c.cfg.GetInt(key)
}

func (c *config) GetInt64(key string) int64 {
	return c.cfg.GetInt64(key)
}

func (c *config) GetIntSlice(key string) []int {
	return c.cfg.GetIntSlice(key)
}

func (c *config) GetString(key string) string {
	return c.cfg.GetString(key)
}

func (c *config) GetStringSlice(key string) []string {
	return c.cfg.GetStringSlice(key)
}

func (c *config) GetStringMap(key string) map[string]interface{} {
	return c.cfg.GetStringMap(key)
}
func (c *config) GetStringMapString(key string) map[string]string {
	return c.cfg.GetStringMapString(key)
}

func (c *config) UnmarshalKey(key string, val interface{}) error {
	return c.cfg.UnmarshalKey(key, &val)
}

func (c *config) GetDuration(key string) time.Duration {
	return c.cfg.GetDuration(key)
}

// postgresSettings reads the database.* keys, falling back to the POSTGRES_* names.
type postgresSettings struct {
	user, password, host, port, dbname string
	maxConns                           int
	maxLifetime                        string
}

func readPostgres(v *viper.Viper) postgresSettings {
	pick := func(key, env string) string {
		if s := v.GetString(key); s != "" {
			return s
		}
		return v.GetString(env)
	}

	ps := postgresSettings{
		user:        pick("database.user", "POSTGRES_USER"),
		password:    pick("database.password", "POSTGRES_PASSWORD"),
		host:        pick("database.host", "POSTGRES_HOST"),
		port:        pick("database.port", "POSTGRES_PORT"),
		dbname:      pick("database.dbname", "POSTGRES_DATABASE"),
		maxConns:    v.GetInt("database.pool_max_conns"),
		maxLifetime: v.GetString("database.pool_max_conn_lifetime"),
	}
	if ps.maxConns == 0 {
		ps.maxConns = 30
	}
	if ps.maxLifetime == "" {
		ps.maxLifetime = "1h30m"
	}
	return ps
}

// dsn is the key=value form pgxpool accepts. Empty when nothing is configured.
func (ps postgresSettings) dsn() string {
	if ps.user == "" && ps.host == "" && ps.dbname == "" {
		return ""
	}

	var parts []string
	for _, kv := range [][2]string{
		{"user", ps.user},
		{"password", ps.password},
		{"dbname", ps.dbname},
		{"host", ps.host},
		{"port", ps.port},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	parts = append(parts,
		fmt.Sprintf("pool_max_conns=%d", ps.maxConns),
		"pool_max_conn_lifetime="+ps.maxLifetime,
	)
	return strings.Join(parts, " ")
}

// migrationURL is the form golang-migrate expects. User, host and dbname are required.
func (ps postgresSettings) migrationURL() string {
	if ps.user == "" || ps.host == "" || ps.dbname == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(ps.user, ps.password),
		Host:     ps.host,
		Path:     "/" + ps.dbname,
		RawQuery: "sslmode=disable",
	}
	if ps.port != "" {
		u.Host = ps.host + ":" + ps.port
	}
	return u.String()
}
