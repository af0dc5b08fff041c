package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "./test.db",
		FeedsDir:          "./feeds",
		Port:              "8080",
		WorkerCount:       5,
		SchedulerInterval: 300,
		APIAccessKey:      "test-key",
		DedupWindowHours:  48,
		DedupSimilarity:   0.8,
		ProviderTimeout:   60,
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 300 {
		t.Errorf("Expected scheduler interval 300, got %d", cfg.SchedulerInterval)
	}
	if cfg.DedupWindowHours != 48 {
		t.Errorf("Expected dedup window 48, got %d", cfg.DedupWindowHours)
	}
	if cfg.DedupSimilarity != 0.8 {
		t.Errorf("Expected dedup similarity 0.8, got %v", cfg.DedupSimilarity)
	}
	if cfg.ProviderTimeout != 60 {
		t.Errorf("Expected provider timeout 60, got %d", cfg.ProviderTimeout)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Cfg{Timezone: "UTC"}
	if loc := cfg.Location(); loc != time.UTC {
		t.Errorf("Expected UTC, got %v", loc)
	}

	cfg = &Cfg{Timezone: "not/a/zone"}
	if loc := cfg.Location(); loc != time.UTC {
		t.Errorf("Expected UTC fallback for invalid zone, got %v", loc)
	}
}
