// Package config loads the kinematics engine's environment-variable
// configuration, mirroring the env-var surface of the system it
// replaces: database and bus connection parameters, reference data
// paths, telemetry output, and a test-mode random seed.
package config

import (
	"os"
	"strconv"
)

// Config is the fully-resolved configuration for one engine process.
// Every field has a default; a missing env var takes its default, and an
// unparsable one is a configuration error per the error-handling design —
// warn and fall back, never fail init.
type Config struct {
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBPoolSize int32

	BusHost     string
	BusPort     int
	BusPassword string
	BusExchange string

	TelemetryDir       string
	AirportDataPath    string
	AirspaceConfigPath string

	// RandomSeed, when non-nil, is mixed into every aircraft's drift
	// PRNG seed; when nil, each PRNG is seeded from the aircraft id
	// alone. Set via RANDOM_SEED to choose a different reproducible run.
	RandomSeed *int64

	LogLevel string
	LogDir   string
}

// Warning is a non-fatal configuration problem: an unparsable value was
// encountered and a default was substituted.
type Warning struct {
	Key string
	Err error
}

// FromEnv reads every recognized environment variable, falling back to
// defaults and collecting a Warning for each one that was present but
// unparsable. It never returns an error: configuration problems are
// warnings, not fatal init failures, per the error-handling design.
func FromEnv() (Config, []Warning) {
	var warnings []Warning

	str := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	intVar := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			warnings = append(warnings, Warning{Key: key, Err: err})
			return def
		}
		return n
	}

	cfg := Config{
		DBHost:     str("DB_HOST", "localhost"),
		DBPort:     intVar("DB_PORT", 5432),
		DBName:     str("DB_NAME", "atc_system"),
		DBUser:     str("DB_USER", "postgres"),
		DBPassword: str("DB_PASSWORD", "password"),
		DBPoolSize: int32(clamp(intVar("DB_POOL_SIZE", 20), 5, 1<<30)),

		BusHost:     str("BUS_HOST", "localhost"),
		BusPort:     intVar("BUS_PORT", 5672),
		BusPassword: str("BUS_PASSWORD", "guest"),
		BusExchange: str("EVENT_CHANNEL", "atc:events"),

		TelemetryDir:       str("TELEMETRY_DIR", "telemetry"),
		AirportDataPath:    str("AIRPORT_DATA_PATH", ""),
		AirspaceConfigPath: str("AIRSPACE_CONFIG_PATH", ""),

		LogLevel: str("LOG_LEVEL", "info"),
		LogDir:   str("LOG_DIR", ""),
	}

	if v := os.Getenv("RANDOM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			warnings = append(warnings, Warning{Key: "RANDOM_SEED", Err: err})
		} else {
			cfg.RandomSeed = &n
		}
	}

	return cfg, warnings
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
