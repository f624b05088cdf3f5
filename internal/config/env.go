package config

import (
	"os"
	"regexp"
	"strings"
)

// Matches ${VAR} and ${VAR:-fallback}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(match []byte) []byte {
		expr := string(envVarRegex.FindSubmatch(match)[1])

		name, fallback, hasFallback := strings.Cut(expr, ":-")
		if value, exists := os.LookupEnv(name); exists && (value != "" || !hasFallback) {
			return []byte(value)
		}
		if hasFallback {
			return []byte(fallback)
		}
		return match
	})
}
