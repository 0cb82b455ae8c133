package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Getenv parsers. Each converts the raw environment string into its target
// type; Getenv applies the fallback when the variable is unset or empty.

func GetenvString(raw string) (string, error) {
	return raw, nil
}

func GetenvInt(raw string) (int, error) {
	return strconv.Atoi(raw)
}

func GetenvBool(raw string) (bool, error) {
	return strconv.ParseBool(raw)
}

func GetenvDuration(raw string) (time.Duration, error) {
	return time.ParseDuration(raw)
}

func Getenv[T any](parse func(string) (T, error), key string, required bool, fallback T) (T, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		if required {
			var zero T
			return zero, fmt.Errorf("required environment variable %s is not set", key)
		}
		return fallback, nil
	}
	val, err := parse(raw)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("parsing environment variable %s: %w", key, err)
	}
	return val, nil
}

// MustGetenv is Getenv for call sites that treat a bad variable as fatal.
func MustGetenv[T any](parse func(string) (T, error), key string, required bool, fallback T) T {
	val, err := Getenv(parse, key, required, fallback)
	if err != nil {
		panic(err)
	}
	return val
}
