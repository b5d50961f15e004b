package llm

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Cloud-provider metadata endpoints that must never be reached.
var blockedHosts = map[string]bool{
	"169.254.169.254":          true, // AWS EC2 instance metadata
	"metadata.google.internal": true, // GCP metadata server
	"100.100.100.200":          true, // Alibaba Cloud metadata
}

// ValidateEndpoint checks a user-supplied LLM endpoint URL before any
// request is sent to it. It rejects non-HTTP schemes, fragment identifiers,
// known cloud-metadata hosts, and addresses that resolve to link-local or
// reserved ranges. Private and loopback addresses are rejected unless
// allowLocal is set, which is the case for providers that run on the same
// machine (Ollama, LM Studio).
func ValidateEndpoint(rawURL string, allowLocal bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse endpoint URL: %w", err)
	}
	if u.Fragment != "" {
		return fmt.Errorf("fragment identifiers are not allowed in endpoint URLs")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("endpoint URL has no host")
	}
	if blockedHosts[host] {
		return fmt.Errorf("endpoint address is not allowed")
	}
	// 0-prefixed IPs (0.0.0.0, 0177.0.0.1 style) and the IPv6 unspecified
	// address reach the local machine through unexpected parsing paths.
	if strings.HasPrefix(host, "0") || host == "::" {
		return fmt.Errorf("endpoint address is not allowed")
	}

	ips, err := resolveHost(host)
	if err != nil {
		return fmt.Errorf("cannot resolve hostname %q: %w", host, err)
	}
	for _, ip := range ips {
		if err := checkAddress(ip, allowLocal); err != nil {
			return err
		}
	}
	return nil
}

// resolveHost returns the IPs a host refers to, skipping DNS for literals.
func resolveHost(host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}
	return net.LookupIP(host)
}

func checkAddress(ip net.IP, allowLocal bool) error {
	if ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("endpoint address is not allowed")
	}
	if !allowLocal && (ip.IsPrivate() || ip.IsLoopback()) {
		return fmt.Errorf("endpoint address is not allowed")
	}
	return nil
}
