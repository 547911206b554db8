package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	cfg, warnings := FromEnv()
	if len(warnings) != 0 {
		t.Errorf("expected no warnings with a clean environment, got %v", warnings)
	}
	if cfg.DBHost != "localhost" || cfg.DBPort != 5432 || cfg.DBPoolSize != 20 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RandomSeed != nil {
		t.Errorf("expected nil RandomSeed by default, got %v", *cfg.RandomSeed)
	}
}

func TestFromEnvPoolSizeClampedToMinimumFive(t *testing.T) {
	t.Setenv("DB_POOL_SIZE", "2")
	cfg, _ := FromEnv()
	if cfg.DBPoolSize != 5 {
		t.Errorf("expected pool size clamped to 5, got %d", cfg.DBPoolSize)
	}
}

func TestFromEnvUnparsableIntWarns(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	cfg, warnings := FromEnv()
	if cfg.DBPort != 5432 {
		t.Errorf("expected fallback to default on unparsable DB_PORT, got %d", cfg.DBPort)
	}
	if len(warnings) != 1 || warnings[0].Key != "DB_PORT" {
		t.Errorf("expected one warning for DB_PORT, got %+v", warnings)
	}
}

func TestFromEnvRandomSeed(t *testing.T) {
	t.Setenv("RANDOM_SEED", "42")
	cfg, _ := FromEnv()
	if cfg.RandomSeed == nil || *cfg.RandomSeed != 42 {
		t.Errorf("expected RandomSeed=42, got %v", cfg.RandomSeed)
	}
}
