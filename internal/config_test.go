package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/bandhub/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Setlist.AfterSet1 != 15 || cfg.Setlist.AfterSet2 != 15 {
		t.Errorf("breaks = %+v, want 15/15", cfg.Setlist.Breaks)
	}
}

func TestHTTPConfig_Port(t *testing.T) {
	cfg := HTTPConfig{Port: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should fail")
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port 70000 should fail")
	}
	cfg.Port = 8080
	if got := cfg.Address(); got != ":8080" {
		t.Errorf("Address() = %q", got)
	}
}

func TestDataConfig_RequiresLayout(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Data.SetlistsDir = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("empty setlists dir should fail")
	}
	if !strings.Contains(err.Error(), "setlists_dir") && !strings.Contains(err.Error(), "SetlistsDir") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSetlistConfig_BreakRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Setlist.AfterSet2 = 61
	if err := cfg.Validate(); err == nil {
		t.Error("61 minute break should fail")
	}
	cfg.Setlist.AfterSet2 = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero break should pass: %v", err)
	}
}

func TestScrapeConfig_Retries(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Scrape.Retries = -1
	if err := cfg.Validate(); err != nil {
		t.Errorf("-1 disables retry and should pass: %v", err)
	}
	cfg.Scrape.Retries = -2
	if err := cfg.Validate(); err == nil {
		t.Error("-2 retries should fail")
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("GENIUS_ACCESS_TOKEN", "tok")
	p := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `app:
  log_level: debug
  http:
    port: 9000
data:
  root: /srv/band
  setlists_dir: shows
scrape:
  timeout: 5s
  genius_token: ${GENIUS_ACCESS_TOKEN}
  cache:
    ttl: 1h
setlist:
  set1_break: 20
`
	if err := os.WriteFile(p, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(p, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9000 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Data.Root != "/srv/band" || cfg.Data.SetlistsDir != "shows" || cfg.Data.TabsDir != "song_data/tabs" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Scrape.Timeout != 5*time.Second || cfg.Scrape.GeniusToken != "tok" || cfg.Scrape.Cache.TTL != time.Hour {
		t.Errorf("scrape = %+v", cfg.Scrape)
	}
	if cfg.Scrape.Cache.Path == "" {
		t.Error("cache path default lost")
	}
	if cfg.Setlist.AfterSet1 != 20 || cfg.Setlist.AfterSet2 != 15 {
		t.Errorf("breaks = %+v", cfg.Setlist.Breaks)
	}
}
