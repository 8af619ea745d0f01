package config

import (
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads .env and .env.local from dir. Existing process
// environment variables are never overwritten, so the shell wins.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if err := godotenv.Load(p); err == nil {
			slog.Debug("Loaded environment file", "path", p)
		}
	}
}
