package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"campus_rentals/internal/adapters/mail"
	"campus_rentals/internal/app"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	StoreBackend string // mysql|mongo|memory
	MySQLDSN     string
	MongoURI     string
	MongoDB      string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	JWTSecret   string
	CronSecret  string
	CORSOrigins []string

	AppURL        string
	MailTransport string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	MailAPIURL    string
	MailAPIKey    string
	MailRPS       int

	NotifyWorkers int
	NotifyTimeout time.Duration
	DigestWindow  int

	TriggerURL  string
	TriggerCron string
}

// Load resolves configuration from, in increasing precedence: built-in
// defaults, the YAML file named by CONFIG_FILE, a .env file, and the process
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	file := map[string]string{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if file, err = readYAML(path); err != nil {
			return Config{}, err
		}
	}

	env := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		if v, ok := file[k]; ok && v != "" {
			return v
		}
		return def
	}
	atoi := func(k string, def int) int {
		if v := env(k, ""); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}

	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		LogLevel:     env("LOG_LEVEL", "info"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		StoreBackend: strings.ToLower(env("STORE_BACKEND", "mysql")),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/campus?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		MongoURI:     env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      env("MONGO_DB", "campus"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		JWTSecret:   env("JWT_SECRET", ""),
		CronSecret:  env("CRON_SECRET", ""),
		CORSOrigins: splitList(env("CORS_ORIGINS", "*")),

		AppURL:        strings.TrimRight(env("APP_URL", "http://localhost:3000"), "/"),
		MailTransport: strings.ToLower(env("MAIL_TRANSPORT", "smtp")),
		SMTPHost:      env("SMTP_HOST", ""),
		SMTPPort:      atoi("SMTP_PORT", 587),
		SMTPUser:      env("SMTP_USER", ""),
		SMTPPass:      env("SMTP_PASS", ""),
		SMTPFrom:      env("SMTP_FROM", ""),
		MailAPIURL:    env("MAIL_API_URL", ""),
		MailAPIKey:    env("MAIL_API_KEY", ""),
		MailRPS:       atoi("MAIL_RPS", 5),

		NotifyWorkers: atoi("NOTIFY_WORKERS", 4),
		NotifyTimeout: time.Duration(atoi("NOTIFY_TIMEOUT_SECONDS", 240)) * time.Second,
		DigestWindow:  atoi("DIGEST_WINDOW", app.DefaultDigestWindow),

		TriggerURL:  env("TRIGGER_URL", "http://localhost:8080/api/cron/process-saved-searches"),
		TriggerCron: env("TRIGGER_CRON", "0 * * * *"),
	}

	switch c.StoreBackend {
	case "mysql", "mongo", "memory":
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND must be mysql, mongo or memory, got %q", c.StoreBackend)
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; authenticated routes will reject every request")
	}
	if c.CronSecret == "" {
		log.Warn().Msg("CRON_SECRET is empty; the cron trigger will answer 500")
	}
	return c, nil
}

func (c Config) MailConfig() mail.Config {
	return mail.Config{
		Transport: c.MailTransport,
		AppURL:    c.AppURL,
		SMTP: mail.SMTPConfig{
			Host: c.SMTPHost, Port: c.SMTPPort, User: c.SMTPUser, Pass: c.SMTPPass, From: c.SMTPFrom,
		},
		API: mail.APIConfig{URL: c.MailAPIURL, Key: c.MailAPIKey, From: c.SMTPFrom, RPS: c.MailRPS},
	}
}

func (c Config) NotifierConfig() app.NotifierConfig {
	return app.NotifierConfig{Workers: c.NotifyWorkers, DigestWindow: c.DigestWindow, Timeout: c.NotifyTimeout}
}

// readYAML reads a flat KEY: value file. Non-string scalars are kept in
// their textual form.
func readYAML(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(t))
			for _, e := range t {
				parts = append(parts, fmt.Sprint(e))
			}
			out[strings.ToUpper(k)] = strings.Join(parts, ",")
		default:
			out[strings.ToUpper(k)] = fmt.Sprint(t)
		}
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
