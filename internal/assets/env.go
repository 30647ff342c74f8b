package assets

import (
	"fmt"
	"net/url"
	"strings"
)

// Environment describes where relative asset paths are served from.
type Environment struct {
	base *url.URL
}

// NewEnvironment parses base. An empty base or a file:// URL means the
// viewer runs from the local filesystem and has no server to fetch from.
func NewEnvironment(base string) (*Environment, error) {
	if base == "" {
		return &Environment{}, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", base, err)
	}
	if u.Scheme != "" && u.Scheme != "file" && u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", base)
	}
	if u.Scheme != "file" && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Environment{base: u}, nil
}

// LocalFile reports whether assets cannot be fetched over the network.
func (e *Environment) LocalFile() bool {
	return e == nil || e.base == nil || e.base.Scheme == "" || e.base.Scheme == "file"
}

// Base returns the base URL string, or "" in local file mode without one.
func (e *Environment) Base() string {
	if e == nil || e.base == nil {
		return ""
	}
	return e.base.String()
}

// URL resolves path against the base. Absolute URLs are returned unchanged;
// "/x" is relative to the origin and "./x" or "x" to the base directory.
func (e *Environment) URL(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if e == nil || e.base == nil {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return e.base.ResolveReference(ref).String()
}
