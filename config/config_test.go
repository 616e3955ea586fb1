package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	configContent := `
server:
  port: 9090
gemini:
  api_key: "test-key"
  capable_model: "gemini-2.5-pro"
  economy_model: "gemini-2.5-flash"
  capable_daily_limit: 100
  economy_daily_limit: 500
ocr:
  languages: ["kor"]
cache:
  ttl_minutes: 15
  max_entries: 64
upload:
  max_size_mb: 10
storage:
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "test-bucket"
  use_ssl: false
  expire_days: 14
log:
  level: "debug"
  format: "json"
store:
  max_records: 50
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	// Test loading config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("Expected api key test-key, got %s", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.CapableDailyLimit != 100 {
		t.Errorf("Expected capable daily limit 100, got %d", cfg.Gemini.CapableDailyLimit)
	}
	if cfg.Cache.TTLMinutes != 15 {
		t.Errorf("Expected cache TTL 15, got %d", cfg.Cache.TTLMinutes)
	}
	if cfg.Storage.Endpoint != "localhost:9000" {
		t.Errorf("Expected endpoint localhost:9000, got %s", cfg.Storage.Endpoint)
	}
	if len(cfg.OCR.Languages) != 1 || cfg.OCR.Languages[0] != "kor" {
		t.Errorf("Expected ocr languages [kor], got %v", cfg.OCR.Languages)
	}
	if cfg.Store.MaxRecords != 50 {
		t.Errorf("Expected max records 50, got %d", cfg.Store.MaxRecords)
	}
}

func TestLoadDefaults(t *testing.T) {
	configContent := `
gemini:
  api_key: "test-key"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Gemini.APIURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("Unexpected default API URL: %s", cfg.Gemini.APIURL)
	}
	if cfg.Gemini.CapableDailyLimit != 200 {
		t.Errorf("Expected default capable limit 200, got %d", cfg.Gemini.CapableDailyLimit)
	}
	if cfg.Gemini.EconomyDailyLimit != 1000 {
		t.Errorf("Expected default economy limit 1000, got %d", cfg.Gemini.EconomyDailyLimit)
	}
	if cfg.PDF.NativeTextThreshold != 50 {
		t.Errorf("Expected default native text threshold 50, got %d", cfg.PDF.NativeTextThreshold)
	}
	if cfg.PDF.RenderDPI != 300 {
		t.Errorf("Expected default render DPI 300, got %d", cfg.PDF.RenderDPI)
	}
	if cfg.Cache.TTLMinutes != 30 {
		t.Errorf("Expected default cache TTL 30, got %d", cfg.Cache.TTLMinutes)
	}
	if cfg.Upload.MaxSizeMB != 20 {
		t.Errorf("Expected default max upload 20MB, got %d", cfg.Upload.MaxSizeMB)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("server: [not a mapping"); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	if _, err := Load(tmpFile.Name()); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
