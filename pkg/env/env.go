package env

import (
	"os"
	"strings"
)

// Prefix scopes process settings to this tool.
const Prefix = "TXLEDGER_"

// Get returns the first non-empty value of PREFIX+key or key, or fallback.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
