package config

import (
	"os"
	"strconv"
)

// IsDebug reports whether CARE_DEBUG holds a true boolean ("1", "true", "TRUE", ...).
func IsDebug() bool {
	on, err := strconv.ParseBool(os.Getenv("CARE_DEBUG"))
	return err == nil && on
}
