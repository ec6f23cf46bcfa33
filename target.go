package vidmetrics

import "net/url"

// ParseTarget validates a configured page address and returns it parsed.
// Only absolute http and https URLs with a host are accepted.
func ParseTarget(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, Errorf(EINVALID, "target URL required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid target URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Errorf(EINVALID, "target URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, Errorf(EINVALID, "target URL %q has no host", raw)
	}
	return u, nil
}
