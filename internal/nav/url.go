package nav

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

var (
	ErrInvalidURL    = errors.New("nav: invalid url")
	ErrInvalidScheme = errors.New("nav: scheme must be http or https")
	ErrInvalidPort   = errors.New("nav: port out of range")
)

// Scheme is the URL scheme of a session endpoint.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

func (s Scheme) valid() bool {
	return s == SchemeHTTP || s == SchemeHTTPS
}

// defaultPort returns the well-known port for the scheme.
func (s Scheme) defaultPort() int {
	if s == SchemeHTTPS {
		return 443
	}
	return 80
}

// URL is the navigation state of one session: scheme, host, port, path
// and query params. A URL is only constructible from a well-formed
// absolute URL, so scheme, host and port are always present. URLs are
// immutable; With* and Update* return new values.
type URL struct {
	scheme Scheme
	host   string
	port   int
	path   Path
	params Params
}

// ParseURL parses an absolute http(s) URL. A missing port defaults to
// the scheme's well-known port, a missing path to "/". The query string
// is decoded with DecodeParams.
func ParseURL(raw string) (URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := Scheme(parsed.Scheme)
	if !scheme.valid() {
		return URL{}, fmt.Errorf("%w: %q", ErrInvalidScheme, parsed.Scheme)
	}
	host := parsed.Hostname()
	if host == "" {
		return URL{}, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}
	port := scheme.defaultPort()
	if p := parsed.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 0 || port > 65535 {
			return URL{}, fmt.Errorf("%w: %q", ErrInvalidPort, p)
		}
	}
	rawPath := parsed.EscapedPath()
	if rawPath == "" {
		rawPath = "/"
	}
	path, err := ParsePath(rawPath)
	if err != nil {
		return URL{}, err
	}
	return URL{
		scheme: scheme,
		host:   host,
		port:   port,
		path:   path,
		params: DecodeParams(parsed.RawQuery),
	}, nil
}

// FromHost builds a URL from a location-change event: the raw URI the
// host runtime reports plus the query parameters it already decoded.
// The decoded parameters take precedence over whatever query string is
// attached to the URI.
func FromHost(decoded map[string]any, rawURI string) (URL, error) {
	u, err := ParseURL(rawURI)
	if err != nil {
		return URL{}, err
	}
	if decoded == nil {
		return u, nil
	}
	params, err := NewParams(decoded)
	if err != nil {
		return URL{}, err
	}
	u.params = params
	return u, nil
}

func (u URL) Scheme() Scheme { return u.scheme }
func (u URL) Host() string   { return u.host }
func (u URL) Port() int      { return u.port }
func (u URL) Path() Path     { return u.path }
func (u URL) Params() Params { return u.params }

// RelativeTarget renders path?query. The query separator is always
// present: the root URL with empty params renders as "/?".
func (u URL) RelativeTarget() string {
	return u.path.String() + "?" + u.params.Encode()
}

// AbsoluteTarget renders scheme://host:port plus the relative target.
func (u URL) AbsoluteTarget() string {
	return string(u.scheme) + "://" + u.host + ":" + strconv.Itoa(u.port) + u.RelativeTarget()
}

// WithPath returns a new URL with the path replaced.
func (u URL) WithPath(p Path) URL {
	u.path = p
	return u
}

// UpdatePath returns a new URL with the path transformed.
func (u URL) UpdatePath(transform func(Path) Path) URL {
	u.path = transform(u.path)
	return u
}

// WithParams returns a new URL with the params replaced.
func (u URL) WithParams(p Params) URL {
	u.params = p
	return u
}

// UpdateParams returns a new URL with the params transformed.
func (u URL) UpdateParams(transform func(Params) Params) URL {
	u.params = transform(u.params)
	return u
}

// WithScheme returns a new URL with the scheme replaced.
func (u URL) WithScheme(s Scheme) (URL, error) {
	if !s.valid() {
		return URL{}, fmt.Errorf("%w: %q", ErrInvalidScheme, string(s))
	}
	u.scheme = s
	return u, nil
}

// WithHost returns a new URL with the host replaced.
func (u URL) WithHost(host string) (URL, error) {
	if host == "" {
		return URL{}, fmt.Errorf("%w: empty host", ErrInvalidURL)
	}
	u.host = host
	return u, nil
}

// WithPort returns a new URL with the port replaced.
func (u URL) WithPort(port int) (URL, error) {
	if port < 0 || port > 65535 {
		return URL{}, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	u.port = port
	return u, nil
}
