package config

import (
	"github.com/joho/godotenv"
)

// loadEnvFiles loads environment variables from .env/.env.local files.
// Existing process environment variables are not overwritten, and a missing
// file is not an error: the environment may already be fully populated.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		_ = godotenv.Load(path)
	}
}
