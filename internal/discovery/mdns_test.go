package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
		wantURL  string
	}{
		{
			name: "IPv4 backend",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Marina Office"},
				HostName:      "charters.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"version=2"},
			},
			wantIP:   "192.168.4.16",
			wantPort: 8080,
			wantURL:  "http://192.168.4.16:8080",
		},
		{
			name: "no port specified (should default to 8080)",
			entry: &zeroconf.ServiceEntry{
				HostName: "charters.local.",
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantIP:   "10.0.0.5",
			wantPort: DefaultPort,
			wantURL:  "http://10.0.0.5:8080",
		},
		{
			name: "https with path prefix",
			entry: &zeroconf.ServiceEntry{
				HostName: "charters.local.",
				Port:     8443,
				AddrIPv4: []net.IP{net.ParseIP("172.16.0.1")},
				Text:     []string{"scheme=https", "path=/booking/"},
			},
			wantIP:   "172.16.0.1",
			wantPort: 8443,
			wantURL:  "https://172.16.0.1:8443/booking",
		},
		{
			name: "IPv6 only backend",
			entry: &zeroconf.ServiceEntry{
				HostName: "charters.local.",
				Port:     8080,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 8080,
			wantURL:  "http://[fe80::1]:8080",
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				HostName: "charters.local.",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantIP:   "192.168.1.50",
			wantPort: 8080,
			wantURL:  "http://192.168.1.50:8080",
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				HostName: "charters.local.",
				Port:     8080,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if ep != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", ep)
				}
				return
			}
			if ep == nil {
				t.Fatal("parseServiceEntry() = nil, want endpoint")
			}
			if ep.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", ep.IP, tt.wantIP)
			}
			if ep.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", ep.Port, tt.wantPort)
			}
			if got := ep.BaseURL(); got != tt.wantURL {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantURL)
			}
			if ep.Hostname != tt.entry.HostName || ep.Instance != tt.entry.Instance {
				t.Errorf("names = (%q, %q)", ep.Instance, ep.Hostname)
			}
			if time.Since(ep.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", ep.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "charters.local.",
		Port:     8080,
		AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
		Text:     []string{"path=/", "version=2", "flag", "note=a=b"},
	}

	ep := parseServiceEntry(entry)
	if ep == nil {
		t.Fatal("parseServiceEntry() = nil, want endpoint")
	}

	expected := map[string]string{
		"path":    "/",
		"version": "2",
		"flag":    "",
		"note":    "a=b",
	}
	if len(ep.Metadata) != len(expected) {
		t.Errorf("Metadata has %d entries, want %d", len(ep.Metadata), len(expected))
	}
	for key, want := range expected {
		if got, ok := ep.Metadata[key]; !ok {
			t.Errorf("Metadata missing key %q", key)
		} else if got != want {
			t.Errorf("Metadata[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestNewScanner(t *testing.T) {
	if s := NewScanner(); s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
}
