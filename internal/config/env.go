package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var envPaths = []string{".env", ".env.local"}

// loadEnvFile loads the .env files that exist. Variables already present in
// the process environment are not overwritten.
func loadEnvFile() error {
	var found []string
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("no .env file found")
	}
	return godotenv.Load(found...)
}
