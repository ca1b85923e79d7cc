package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dimitrije/passkeeper/internal/secret"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	LogLevel    string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	Cipher CipherConfig

	BcryptCost        int
	PasswordMinLength int
}

type CipherConfig struct {
	Mode string
	KDF  secret.KDFParams
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"))
	if err != nil {
		refreshExpiry = 168 * time.Hour
	}

	bcryptCost := getEnvInt("BCRYPT_COST", bcrypt.DefaultCost)
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		JWTSecret:        getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,

		Cipher: CipherConfig{
			Mode: getEnv("CIPHER_MODE", secret.ModeSealed),
			KDF: secret.KDFParams{
				Time:      uint8(getEnvInt("ARGON2_TIME", int(secret.DefaultKDFParams.Time))),
				MemoryKiB: uint32(getEnvInt("ARGON2_MEMORY_KIB", int(secret.DefaultKDFParams.MemoryKiB))),
				Threads:   uint8(getEnvInt("ARGON2_THREADS", int(secret.DefaultKDFParams.Threads))),
			},
		},

		BcryptCost:        bcryptCost,
		PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 8),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt falls back on missing, malformed or negative values.
func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
