package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"instasphere/internal/pkg"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	MySQLDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaTopic   string

	SMTP pkg.SMTPConfig

	JWTAccessSecret  string
	JWTRefreshSecret string

	// 对象存储：本地落盘目录 + 对外公开的访问前缀
	StorageRoot    string
	StorageBaseURL string
}

// Load 读取 .env（可选）和环境变量。缺少必填项时启动直接失败，
// 不允许带着残缺的后端连接参数进入服务状态
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:         os.Getenv("MYSQL_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		KafkaTopic:       getenv("KAFKA_TOPIC", "instasphere.notifications"),
		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		StorageRoot:      getenv("STORAGE_ROOT", "./data/storage"),
		StorageBaseURL:   getenv("STORAGE_BASE_URL", "http://localhost:8080/storage"),
	}

	if cfg.MySQLDSN == "" {
		return nil, fmt.Errorf("%w: MYSQL_DSN is required", pkg.ErrConfiguration)
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("%w: REDIS_ADDR is required", pkg.ErrConfiguration)
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: REDIS_DB must be an integer, got %q", pkg.ErrConfiguration, v)
		}
		cfg.RedisDB = n
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}

	cfg.SMTP = pkg.SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getenv("SMTP_FROM", "NoReply <no-reply@instasphere.app>"),
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SMTP_PORT must be an integer, got %q", pkg.ErrConfiguration, v)
		}
		cfg.SMTP.Port = n
	} else {
		cfg.SMTP.Port = 587
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
