package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "configs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	viper.Reset()
}

func TestLoadConfigParsesFile(t *testing.T) {
	writeConfigFile(t, "server:\n  port: 9090\nlogstash:\n  index: \"ripple-logs\"\n")

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if Cfg.Server.Port != 9090 {
		t.Fatalf("Server.Port = %d, want 9090", Cfg.Server.Port)
	}
	if Cfg.Logstash.Index != "ripple-logs" {
		t.Fatalf("Logstash.Index = %q, want ripple-logs", Cfg.Logstash.Index)
	}
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	writeConfigFile(t, "server:\n  port: [unclosed\n")

	if err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted malformed yaml")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	viper.Reset()

	if err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig accepted missing config file")
	}
}
