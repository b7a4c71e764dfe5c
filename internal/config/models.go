package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charterdesk/charterdesk/internal/refresh"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

const (
	// CurrentVersion is the config file format version
	CurrentVersion = 1

	// MaxRecentSearches caps the recent search history
	MaxRecentSearches = 10

	defaultTimeout         = 10 * time.Second
	defaultRetries         = 3
	defaultDiscoverTimeout = 5
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version        int                      `yaml:"version"`
	Backend        *Backend                 `yaml:"backend,omitempty"`
	Preferences    *Preferences             `yaml:"preferences,omitempty"`
	Guest          *GuestProfile            `yaml:"guest,omitempty"`
	RecentSearches []RecentSearch           `yaml:"recent_searches,omitempty"`
	KnownBackends  map[string]*KnownBackend `yaml:"known_backends,omitempty"` // Keyed by base URL
}

// Backend holds the reservation service connection settings.
type Backend struct {
	URL        string        `yaml:"url,omitempty"`         // e.g. "http://localhost:8080"
	Timeout    time.Duration `yaml:"timeout,omitempty"`     // Per-request timeout
	MaxRetries int           `yaml:"max_retries,omitempty"` // Retries for GET requests
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultYachtType string `yaml:"default_yacht_type,omitempty"` // Preselected type filter
	RefreshSchedule  string `yaml:"refresh_schedule,omitempty"`   // Cron expression, e.g. "@every 5m"; empty disables
	AutoDiscover     bool   `yaml:"auto_discover"`                // Browse mDNS when no backend URL is set
	DiscoverTimeout  int    `yaml:"discover_timeout"`             // mDNS discovery timeout in seconds
	LiveFeed         bool   `yaml:"live_feed"`                    // Subscribe to the reservation stream in the TUI
}

// GuestProfile prefills the reservation form.
type GuestProfile struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// RecentSearch is one entry of the search history, newest first.
type RecentSearch struct {
	Criteria   yacht.Criteria `yaml:"criteria"`
	SearchedAt time.Time      `yaml:"searched_at"`
}

// KnownBackend records a backend found by discovery.
type KnownBackend struct {
	Instance string    `yaml:"instance,omitempty"`
	LastSeen time.Time `yaml:"last_seen"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:       CurrentVersion,
		Backend:       defaultBackend(),
		Preferences:   defaultPreferences(),
		Guest:         &GuestProfile{},
		KnownBackends: make(map[string]*KnownBackend),
	}
}

func defaultBackend() *Backend {
	return &Backend{Timeout: defaultTimeout, MaxRetries: defaultRetries}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DefaultYachtType: yacht.AllTypes,
		AutoDiscover:     true,
		DiscoverTimeout:  defaultDiscoverTimeout,
		LiveFeed:         true,
	}
}

// applyDefaults fills sections missing from a loaded file.
func (r *Registry) applyDefaults() {
	if r.Backend == nil {
		r.Backend = defaultBackend()
	}
	if r.Backend.Timeout == 0 {
		r.Backend.Timeout = defaultTimeout
	}
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	if r.Preferences.DefaultYachtType == "" {
		r.Preferences.DefaultYachtType = yacht.AllTypes
	}
	if r.Preferences.DiscoverTimeout <= 0 {
		r.Preferences.DiscoverTimeout = defaultDiscoverTimeout
	}
	if r.Guest == nil {
		r.Guest = &GuestProfile{}
	}
	if r.KnownBackends == nil {
		r.KnownBackends = make(map[string]*KnownBackend)
	}
}

// Validate checks values that would otherwise fail later at startup.
func (r *Registry) Validate() error {
	if r.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", r.Version, CurrentVersion)
	}
	if r.Backend != nil && r.Backend.URL != "" {
		if err := ValidateBackendURL(r.Backend.URL); err != nil {
			return err
		}
	}
	if r.Backend != nil && (r.Backend.Timeout < 0 || r.Backend.MaxRetries < 0) {
		return fmt.Errorf("backend timeout and max_retries must not be negative")
	}
	if r.Preferences != nil {
		if err := refresh.ValidateSchedule(r.Preferences.RefreshSchedule); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBackendURL checks that raw is an absolute http(s) URL.
func ValidateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend URL %q: missing host", raw)
	}
	return nil
}

// SetBackendURL stores the backend URL without a trailing slash.
func (r *Registry) SetBackendURL(raw string) error {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if err := ValidateBackendURL(raw); err != nil {
		return err
	}
	if r.Backend == nil {
		r.Backend = defaultBackend()
	}
	r.Backend.URL = raw
	return nil
}

// BackendURL returns the configured backend URL or "".
func (r *Registry) BackendURL() string {
	if r.Backend == nil {
		return ""
	}
	return r.Backend.URL
}

// SetGuest stores the guest profile used to prefill reservations.
func (r *Registry) SetGuest(name, email string) {
	r.Guest = &GuestProfile{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
}

// AddRecentSearch records c as the newest search. An identical earlier
// entry is moved to the front and the history is capped at MaxRecentSearches.
func (r *Registry) AddRecentSearch(c yacht.Criteria, at time.Time) {
	r.RecentSearches = slices.DeleteFunc(r.RecentSearches, func(s RecentSearch) bool {
		return s.Criteria == c
	})
	r.RecentSearches = slices.Insert(r.RecentSearches, 0, RecentSearch{Criteria: c, SearchedAt: at})
	if len(r.RecentSearches) > MaxRecentSearches {
		r.RecentSearches = r.RecentSearches[:MaxRecentSearches]
	}
}

// LastSearch returns the newest recent search.
func (r *Registry) LastSearch() (yacht.Criteria, bool) {
	if len(r.RecentSearches) == 0 {
		return yacht.Criteria{}, false
	}
	return r.RecentSearches[0].Criteria, true
}

// RememberBackend records a discovered backend.
func (r *Registry) RememberBackend(baseURL, instance string, seen time.Time) {
	if r.KnownBackends == nil {
		r.KnownBackends = make(map[string]*KnownBackend)
	}
	r.KnownBackends[baseURL] = &KnownBackend{Instance: instance, LastSeen: seen}
}

// DiscoverTimeout returns the mDNS discovery timeout.
func (r *Registry) DiscoverTimeout() time.Duration {
	if r.Preferences == nil || r.Preferences.DiscoverTimeout <= 0 {
		return defaultDiscoverTimeout * time.Second
	}
	return time.Duration(r.Preferences.DiscoverTimeout) * time.Second
}
