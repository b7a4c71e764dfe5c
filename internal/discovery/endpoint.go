package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Endpoint is a reservation backend found on the local network
type Endpoint struct {
	// Instance is the advertised service instance name (e.g., "Marina Office")
	Instance string

	// Hostname is the mDNS hostname (e.g., "charters.local.")
	Hostname string

	// IP is the address to connect to, IPv4 when available
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains the TXT record data
	// Recognised keys: "scheme=https", "path=/api-root", "version=2"
	Metadata map[string]string

	// DiscoveredAt is when the endpoint was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the endpoint
func (e *Endpoint) String() string {
	name := e.Instance
	if name == "" {
		name = e.Hostname
	}
	return fmt.Sprintf("%s at %s", name, e.BaseURL())
}

// BaseURL returns the backend base URL, honouring the scheme and path TXT keys
func (e *Endpoint) BaseURL() string {
	scheme := "http"
	if strings.EqualFold(e.GetMetadata("scheme"), "https") {
		scheme = "https"
	}
	path := strings.TrimRight(e.GetMetadata("path"), "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(e.IP, strconv.Itoa(e.Port)), path)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (e *Endpoint) GetMetadata(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}
