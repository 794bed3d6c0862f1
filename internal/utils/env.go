package utils

import "os"

// SafeEnv reads key from the environment, substituting fallback when the
// variable is unset or empty.
func SafeEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
