package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	JWTSecret        string
	JWTRefreshSecret string
	OSSEndpoint      string
	OSSBucket        string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️  No .env file found, using system ENV")
		} else {
			log.Println("✅ .env loaded")
		}
	} else {
		log.Println("🚀 Running on Railway, using system ENV")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	JWTRefreshSecret = GetEnv("JWT_REFRESH_SECRET")
	OSSEndpoint = GetEnv("ALI_OSS_ENDPOINT")
	OSSBucket = GetEnv("ALI_OSS_BUCKET")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	}
	if OSSBucket == "" {
		log.Println("⚠️  ALI_OSS_BUCKET is not set, file uploads will fail")
	}
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
