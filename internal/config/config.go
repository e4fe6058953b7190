// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingEnv は必須の環境変数が設定されていないことを表します。
var ErrMissingEnv = errors.New("missing env")

// ReleaseMode は本番環境を表す GIN_MODE の値です。
const ReleaseMode = "release"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port     string // HTTPサーバーのポート番号
	GinMode  string // Ginの実行モード (debug, release, test)
	LogLevel string // ログレベル (debug, info, warn, error)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// データベース設定
	DBHost        string
	DBUser        string
	DBPassword    string
	DBPort        int
	DBName        string
	DBSSLMode     string
	DBMaxConns    int
	DBDebug       bool // DB_DEBUG_FLAG が 0 以外ならクエリをログ出力する
	DBAutoMigrate bool

	// セッション設定
	SessionSecrets []string // 先頭の鍵で署名し、すべての鍵で検証する
	CookieDomain   string   // 本番環境でのみ Cookie に付与するドメイン

	// Argon2id 設定（0 の場合は既定値）
	Argon2MemoryKiB   uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
// 必須の値が欠けている場合は起動時点でエラーを返します。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()
	return FromEnv()
}

// FromEnv は現在の環境変数だけから設定を組み立てます。
func FromEnv() (*Config, error) {
	required := map[string]string{}
	for _, key := range []string{
		"PGHOST",
		"PGUSER",
		"PGPASSWORD",
		"PGPORT",
		"PGDATABASE",
		"DB_DEBUG_FLAG",
		"SESSION_LOGIN_SECRET",
	} {
		value, ok := os.LookupEnv(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingEnv, key)
		}
		required[key] = value
	}

	port, err := strconv.Atoi(strings.TrimSpace(required["PGPORT"]))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PGPORT must be a valid port number: %q", required["PGPORT"])
	}

	debugFlag, err := strconv.Atoi(strings.TrimSpace(required["DB_DEBUG_FLAG"]))
	if err != nil {
		return nil, fmt.Errorf("DB_DEBUG_FLAG must be numeric: %q", required["DB_DEBUG_FLAG"])
	}

	parallelism := getEnvAsInt64("ARGON2_PARALLELISM", 0)
	if parallelism > 64 {
		return nil, fmt.Errorf("ARGON2_PARALLELISM must be between 1 and 64")
	}
	memoryKiB := getEnvAsInt64("ARGON2_MEMORY_KIB", 0)
	if memoryKiB > math.MaxUint32 {
		return nil, fmt.Errorf("ARGON2_MEMORY_KIB is out of range: %d", memoryKiB)
	}
	iterations := getEnvAsInt64("ARGON2_ITERATIONS", 0)
	if iterations > math.MaxUint32 {
		return nil, fmt.Errorf("ARGON2_ITERATIONS is out of range: %d", iterations)
	}

	config := &Config{
		// サーバー設定
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8080"),

		// データベース設定
		DBHost:        required["PGHOST"],
		DBUser:        required["PGUSER"],
		DBPassword:    required["PGPASSWORD"],
		DBPort:        port,
		DBName:        required["PGDATABASE"],
		DBSSLMode:     getEnv("PGSSLMODE", "require"),
		DBMaxConns:    getEnvAsInt("DB_MAX_CONNS", 10),
		DBDebug:       debugFlag != 0,
		DBAutoMigrate: getEnvAsInt("DB_AUTO_MIGRATE", 0) != 0,

		// セッション設定
		SessionSecrets: splitList(required["SESSION_LOGIN_SECRET"]),
		CookieDomain:   getEnv("COOKIE_DOMAIN", ""),

		// Argon2id 設定
		Argon2MemoryKiB:   uint32(memoryKiB),  // #nosec G115 -- MaxUint32 以下を確認済み
		Argon2Iterations:  uint32(iterations), // #nosec G115 -- MaxUint32 以下を確認済み
		Argon2Parallelism: uint8(parallelism), // #nosec G115 -- 64 以下を確認済み
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if len(c.SessionSecrets) == 0 {
		return fmt.Errorf("%w: SESSION_LOGIN_SECRET", ErrMissingEnv)
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.Argon2MemoryKiB != 0 && (c.Argon2MemoryKiB < 8*1024 || c.Argon2MemoryKiB > 1024*1024) {
		return fmt.Errorf("ARGON2_MEMORY_KIB must be between 8192 and 1048576")
	}
	if c.Argon2Iterations > 16 {
		return fmt.Errorf("ARGON2_ITERATIONS must be between 1 and 16")
	}

	// 本番環境では Cookie をドメインに限定する
	if c.IsProduction() && c.CookieDomain == "" {
		return fmt.Errorf("COOKIE_DOMAIN is required in release mode")
	}

	return nil
}

// IsProduction は本番向けの Cookie 属性を付与するかどうかを返します。
func (c *Config) IsProduction() bool {
	return c.GinMode == ReleaseMode
}

// AllowedOrigins は CORS 許可オリジンを前後の空白を除いて返します。
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// splitList はカンマ区切りの値を分割し、空白を除いて空要素を除外します。
func splitList(raw string) []string {
	var items []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			items = append(items, s)
		}
	}
	return items
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
