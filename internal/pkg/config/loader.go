// Package config loads validated configuration values from the environment.
//
// All loaders follow a fail-open strategy: a value that is missing yields the
// default silently, and a value that cannot be parsed or fails validation
// yields the default together with a warning. Loaders never return errors,
// so callers always end up with a usable configuration and decide themselves
// how to report the warnings (see Reporter).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LoadResult is the outcome of loading one configuration value.
//
//	result := LoadEnvDuration("CRAWL_TIMEOUT", 30*time.Minute, ValidatePositiveDuration)
//	if result.FallbackApplied {
//	    // result.Warnings explains why
//	}
//	timeout := result.Value
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

func fallback[T any](envKey, raw string, defaultValue T, err error) LoadResult[T] {
	return LoadResult[T]{
		Value: defaultValue,
		Warnings: []string{fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'",
			envKey, raw, err, defaultValue,
		)},
		FallbackApplied: true,
	}
}

// load is the shared pipeline: read, parse, validate.
func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) LoadResult[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err != nil {
		return fallback(envKey, raw, defaultValue, err)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, raw, defaultValue, err)
		}
	}

	return LoadResult[T]{Value: value}
}

// LoadEnvWithFallback loads a string value and validates it.
// A nil validator accepts any non-empty value.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	return load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvDuration loads a value in time.ParseDuration syntax ("30s", "2m", "1h30m").
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	return load(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult[int] {
	return load(envKey, defaultValue, strconv.Atoi, validator)
}

// LoadEnvFloat loads a float64, used for sampling ratios and model parameters.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) LoadResult[float64] {
	return load(envKey, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}, validator)
}

// LoadEnvBool loads a value accepted by strconv.ParseBool.
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	return load(envKey, defaultValue, strconv.ParseBool, nil)
}
