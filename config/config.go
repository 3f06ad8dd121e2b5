package config

import "os"

// GetEnv gets an environment variable with a fallback value. An empty value
// is treated the same as an unset one.
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
