package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定。起動時に一度だけ読み、各部品へ明示的に渡す。
type Config struct {
	AppName    string
	APIVersion string
	Port       string // サーバーポート（8080）
	GoEnv      string // dev/prod
	LogLevel   string

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	JWTSecret      string // JWT署名シークレット
	AccessTokenTTL time.Duration

	TxTimeout       time.Duration // 1トランザクションの上限
	LockTimeout     time.Duration // 行ロック待ちの上限
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration // 1リクエストの上限（認証のユーザー取得・参照系も含む）

	CORSOrigins []string
}

const devJWTSecret = "dev_secret_change_me"

// Loadは.envと環境変数から設定を作る
func Load() (Config, error) {
	envFile := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	pgPort, err := envInt("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	accessTTL, err := envDuration("ACCESS_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	txTimeout, err := envDuration("TX_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	lockTimeout, err := envDuration("LOCK_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	requestTimeout, err := envDuration("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:    getenv("APP_NAME", "TechGear E-Commerce Backend"),
		APIVersion: getenv("API_VERSION", "0.1.0"),
		Port:       getenv("PORT", "8080"),
		GoEnv:      getenv("GO_ENV", "dev"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: accessTTL,

		TxTimeout:       txTimeout,
		LockTimeout:     lockTimeout,
		ShutdownTimeout: shutdownTimeout,
		RequestTimeout:  requestTimeout,

		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.LockTimeout > cfg.TxTimeout {
		return Config{}, fmt.Errorf("LOCK_TIMEOUT must be <= TX_TIMEOUT")
	}
	if cfg.TxTimeout > cfg.RequestTimeout {
		return Config{}, fmt.Errorf("TX_TIMEOUT must be <= REQUEST_TIMEOUT")
	}

	return cfg, nil
}

func (c Config) IsDev() bool {
	return c.GoEnv == "dev"
}

// DSN はgormに渡す接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Addr は ":8080" 形式にそろえる
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
