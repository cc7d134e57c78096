package gridfs

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

// ParseURL splits a grid:// connection URL into the driver name, the
// shared connection config and an optional root override. The first
// path segment is the zone; deeper segments anchor the adapter root
// below it.
func ParseURL(rawURL string) (string, store.Config, string, error) {
	cfg := store.Config{}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", cfg, "", fmt.Errorf("%w: %v", data.ErrInvalid, err)
	}
	if u.Scheme != "grid" {
		return "", cfg, "", fmt.Errorf("%w: unsupported scheme '%s'", data.ErrInvalid, u.Scheme)
	}

	query := u.Query()
	name := query.Get("driver")
	if name == "" {
		return "", cfg, "", fmt.Errorf("%w: missing 'driver' query parameter", data.ErrInvalid)
	}
	query.Del("driver")

	cfg.Host = u.Hostname()
	if port := u.Port(); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return "", cfg, "", fmt.Errorf("%w: invalid port '%s'", data.ErrInvalid, port)
		}
		cfg.Port = p
	}

	if u.User != nil {
		cfg.Username = u.User.Username()
		if credential, ok := u.User.Password(); ok {
			cfg.Credential = credential
		}
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if segments[0] == "" {
		return "", cfg, "", fmt.Errorf("%w: missing zone in path", data.ErrInvalid)
	}
	cfg.Zone = segments[0]

	root := ""
	if len(segments) > 1 {
		root = "/" + strings.Join(segments, "/")
	}

	if len(query) > 0 {
		cfg.Options = make(map[string]string, len(query))
		for key := range query {
			cfg.Options[key] = query.Get(key)
		}
	}

	return name, cfg, root, nil
}
