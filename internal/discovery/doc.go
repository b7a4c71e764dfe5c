// Package discovery locates reservation backends on the local network.
//
// Backends advertise the "_charterdesk._tcp" DNS-SD service over multicast
// DNS. The CLI falls back to discovery when no backend URL is given by flag,
// environment or config file.
//
// # TXT Records
//
//   - scheme=https: connect over TLS (default http)
//   - path=/prefix: API root below the host
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 3 * time.Second
//	endpoints, err := scanner.Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, ep := range endpoints {
//	    fmt.Println(ep.Instance, ep.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Firewall must allow mDNS (UDP port 5353)
package discovery
