package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charterdesk/charterdesk/internal/yacht"
)

func TestGetConfigDir(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, "")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "charterdesk") {
		t.Errorf("GetConfigDir() = %v, should contain 'charterdesk'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "linux":
		if os.Getenv("XDG_CONFIG_HOME") == "" && !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_Overrides(t *testing.T) {
	override := t.TempDir()
	t.Setenv(ConfigDirEnvVar, override)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if got != override {
		t.Errorf("GetConfigDir() = %v, want %v", got, override)
	}

	if runtime.GOOS != "linux" {
		return
	}
	t.Setenv(ConfigDirEnvVar, "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	got, err = GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(xdg, "charterdesk"); got != want {
		t.Errorf("GetConfigDir() = %v, want %v", got, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Backend == nil || reg.Backend.Timeout != 10*time.Second || reg.Backend.MaxRetries != 3 {
		t.Errorf("NewRegistry().Backend = %+v", reg.Backend)
	}

	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}

	if !reg.Preferences.AutoDiscover {
		t.Error("NewRegistry().Preferences.AutoDiscover should be true by default")
	}

	if reg.Preferences.DefaultYachtType != yacht.AllTypes {
		t.Errorf("DefaultYachtType = %q, want %q", reg.Preferences.DefaultYachtType, yacht.AllTypes)
	}

	if reg.DiscoverTimeout() != 5*time.Second {
		t.Errorf("DiscoverTimeout() = %v, want 5s", reg.DiscoverTimeout())
	}

	if err := reg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestRegistrySetBackendURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", "http://localhost:8080", "http://localhost:8080", false},
		{"trailing slash", " https://charters.example.com/ ", "https://charters.example.com", false},
		{"wrong scheme", "ftp://charters.example.com", "", true},
		{"no host", "http://", "", true},
		{"relative", "charters.example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.SetBackendURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetBackendURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got := reg.BackendURL(); got != tt.want {
				t.Errorf("BackendURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistryAddRecentSearch(t *testing.T) {
	reg := NewRegistry()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= MaxRecentSearches+2; i++ {
		c := yacht.Criteria{ReservationDate: "2026-11-01", YachtType: yacht.AllTypes, MinimumCapacity: i}
		reg.AddRecentSearch(c, base.Add(time.Duration(i)*time.Minute))
	}

	if len(reg.RecentSearches) != MaxRecentSearches {
		t.Fatalf("len(RecentSearches) = %d, want %d", len(reg.RecentSearches), MaxRecentSearches)
	}

	last, ok := reg.LastSearch()
	if !ok || last.MinimumCapacity != MaxRecentSearches+2 {
		t.Errorf("LastSearch() = %+v, %v", last, ok)
	}

	// Repeating an older search moves it to the front without duplicating it.
	again := reg.RecentSearches[4].Criteria
	reg.AddRecentSearch(again, base.Add(time.Hour))
	if len(reg.RecentSearches) != MaxRecentSearches {
		t.Errorf("len(RecentSearches) = %d after repeat", len(reg.RecentSearches))
	}
	if reg.RecentSearches[0].Criteria != again {
		t.Errorf("RecentSearches[0] = %+v, want %+v", reg.RecentSearches[0].Criteria, again)
	}
	for _, s := range reg.RecentSearches[1:] {
		if s.Criteria == again {
			t.Error("repeated search still present further down the history")
		}
	}
}

func TestRegistryLastSearch_Empty(t *testing.T) {
	if _, ok := NewRegistry().LastSearch(); ok {
		t.Error("LastSearch() ok = true on empty history")
	}
}

func TestRegistryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Registry)
		wantErr bool
	}{
		{"defaults", func(*Registry) {}, false},
		{"future version", func(r *Registry) { r.Version = 2 }, true},
		{"bad url", func(r *Registry) { r.Backend.URL = "localhost" }, true},
		{"negative retries", func(r *Registry) { r.Backend.MaxRetries = -1 }, true},
		{"bad schedule", func(r *Registry) { r.Preferences.RefreshSchedule = "sometimes" }, true},
		{"cron schedule", func(r *Registry) { r.Preferences.RefreshSchedule = "*/15 * * * *" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			tt.mutate(reg)
			if err := reg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	if err := reg.SetBackendURL("http://charters.local:8080"); err != nil {
		t.Fatalf("SetBackendURL() error = %v", err)
	}
	reg.Backend.Timeout = 15 * time.Second
	reg.Preferences.RefreshSchedule = "@every 5m"
	reg.SetGuest(" Ada Lovelace ", "ada@example.com")
	searchedAt := time.Date(2026, 10, 18, 10, 30, 0, 0, time.UTC)
	reg.AddRecentSearch(yacht.Criteria{ReservationDate: "2026-11-01", YachtType: "Sailboat", MinimumCapacity: 4}, searchedAt)
	reg.RememberBackend("http://charters.local:8080", "Harbor Office", searchedAt)

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	if loaded.BackendURL() != "http://charters.local:8080" {
		t.Errorf("BackendURL() = %q", loaded.BackendURL())
	}
	if loaded.Backend.Timeout != 15*time.Second {
		t.Errorf("Backend.Timeout = %v, want 15s", loaded.Backend.Timeout)
	}
	if loaded.Preferences.RefreshSchedule != "@every 5m" {
		t.Errorf("RefreshSchedule = %q", loaded.Preferences.RefreshSchedule)
	}
	if loaded.Guest.Name != "Ada Lovelace" || loaded.Guest.Email != "ada@example.com" {
		t.Errorf("Guest = %+v", loaded.Guest)
	}
	last, ok := loaded.LastSearch()
	if !ok || last.YachtType != "Sailboat" || last.MinimumCapacity != 4 {
		t.Errorf("LastSearch() = %+v, %v", last, ok)
	}
	if !loaded.RecentSearches[0].SearchedAt.Equal(searchedAt) {
		t.Errorf("SearchedAt = %v, want %v", loaded.RecentSearches[0].SearchedAt, searchedAt)
	}
	known := loaded.KnownBackends["http://charters.local:8080"]
	if known == nil || known.Instance != "Harbor Office" {
		t.Errorf("KnownBackends = %+v", loaded.KnownBackends)
	}
}

func TestLoadRegistryFrom_Missing(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Version != CurrentVersion || reg.Preferences == nil {
		t.Errorf("missing file should yield defaults, got %+v", reg)
	}
}

func TestLoadRegistryFrom_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "version: 1\nbackend:\n  url: http://localhost:9000\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Backend.Timeout != 10*time.Second {
		t.Errorf("Backend.Timeout = %v, want default 10s", reg.Backend.Timeout)
	}
	if reg.Preferences == nil || reg.Guest == nil || reg.KnownBackends == nil {
		t.Error("missing sections should be filled with defaults")
	}
}

func TestLoadRegistryFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "version: [1"},
		{"unknown version", "version: 7\n"},
		{"bad schedule", "version: 1\npreferences:\n  refresh_schedule: whenever\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRegistryFrom(path); err == nil {
				t.Error("LoadRegistryFrom() error = nil, want error")
			}
		})
	}
}

func TestLoadRegistry_Global(t *testing.T) {
	t.Setenv(ConfigDirEnvVar, t.TempDir())

	reg, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if err := reg.SetBackendURL("http://localhost:8080"); err != nil {
		t.Fatal(err)
	}
	if err := SaveGlobal(); err != nil {
		t.Fatalf("SaveGlobal() error = %v", err)
	}

	again, err := LoadRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if again != reg {
		t.Error("LoadRegistry() should return the cached instance")
	}

	reloaded, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if reloaded.BackendURL() != "http://localhost:8080" {
		t.Errorf("reloaded BackendURL() = %q", reloaded.BackendURL())
	}
}

func BenchmarkAddRecentSearch(b *testing.B) {
	reg := NewRegistry()
	now := time.Now()
	for i := 0; i < b.N; i++ {
		reg.AddRecentSearch(yacht.Criteria{ReservationDate: "2026-11-01", MinimumCapacity: i % 20}, now)
	}
}
