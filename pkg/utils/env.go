package utils

import (
	"os"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// envCache memoizes values read from the .env fallback file
var envCache = gocache.New(10*time.Second, time.Minute)

func GetEnv(key string) string {
	v, _ := LookupEnv(key)
	return v
}

// LookupEnv checks the process environment first, then the .env file in the working directory.
func LookupEnv(key string) (value string, found bool) {
	key = strings.ToUpper(key)
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	if val, ok := envCache.Get(key); ok {
		if v, ok := val.(string); ok {
			return v, true
		}
	}
	data, err := os.ReadFile(".env")
	if err != nil {
		return "", false
	}
	for k, v := range parseEnvLines(string(data)) {
		envCache.Set(k, v, gocache.DefaultExpiration)
	}
	if val, ok := envCache.Get(key); ok {
		return val.(string), true
	}
	return "", false
}

// Environ returns the process environment with values from the .env file in the
// working directory filling any key the process does not set
func Environ() map[string]string {
	vals := make(map[string]string)
	if data, err := os.ReadFile(".env"); err == nil {
		for k, v := range parseEnvLines(string(data)) {
			vals[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vals[k] = v
		}
	}
	return vals
}

// ResetEnvCache drops memoized .env values
func ResetEnvCache() {
	envCache.Flush()
}

// LoadEnv Load .env file based on environment
func LoadEnv(env string) error {
	envFile := ".env"
	if env != "" {
		envFile = ".env." + env
	}

	data, err := os.ReadFile(envFile)
	if err != nil {
		return err
	}

	for key, value := range parseEnvLines(string(data)) {
		if _, exists := os.LookupEnv(key); exists {
			// process environment wins over the file
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			logrus.WithFields(logrus.Fields{
				"key":  key,
				"file": envFile,
			}).WithError(err).Warn("config: setenv fail")
		}
	}
	ResetEnvCache()
	return nil
}

func parseEnvLines(data string) map[string]string {
	vals := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(parts[0]))
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		vals[key] = value
	}
	return vals
}
