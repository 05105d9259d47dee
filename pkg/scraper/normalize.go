package scraper

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Normalizer canonicalizes links and confines them to the origin of the crawl root.
type Normalizer struct {
	root   *url.URL
	origin string
}

func NewNormalizer(rootURL string) (*Normalizer, error) {
	root, err := url.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("invalid root URL %q: %w", rootURL, err)
	}
	if !isHTTP(root.Scheme) || root.Host == "" {
		return nil, fmt.Errorf("root URL %q must be an absolute http(s) URL", rootURL)
	}
	return &Normalizer{root: root, origin: origin(root)}, nil
}

// Normalize resolves candidate against base (the root when base is empty) and
// returns its canonical form: same origin as the root, no query, no fragment.
// The bool is false for malformed or off-origin links.
func (n *Normalizer) Normalize(candidate, base string) (string, bool) {
	baseURL := n.root
	if base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		baseURL = b
	}

	ref, err := url.Parse(strings.TrimSpace(candidate))
	if err != nil {
		return "", false
	}

	u := baseURL.ResolveReference(ref)
	if !isHTTP(u.Scheme) || u.Host == "" || origin(u) != n.origin {
		return "", false
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = canonicalHost(u)
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String(), true
}

// Origin returns the scheme://host[:port] the crawl is bound to.
func (n *Normalizer) Origin() string {
	return n.origin
}

func isHTTP(scheme string) bool {
	s := strings.ToLower(scheme)
	return s == "http" || s == "https"
}

func origin(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + canonicalHost(u)
}

// canonicalHost lowercases the host and drops the scheme's default port.
func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	scheme := strings.ToLower(u.Scheme)
	if port == "" || (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, port)
}
