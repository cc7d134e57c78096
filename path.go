package gridfs

import (
	"fmt"
	"strings"

	"github.com/mwantia/gridfs/data"
)

// normalizePath collapses a caller-supplied path into the canonical
// absolute form used throughout the adapter. Relative segments are
// resolved lexically; a path that climbs above the root is rejected
// before anything touches the wire.
func normalizePath(local string) (string, error) {
	if strings.ContainsRune(local, 0) {
		return "", fmt.Errorf("%w: '%s' contains a NUL byte", data.ErrInvalidPath, local)
	}

	segments := make([]string, 0, strings.Count(local, "/")+1)
	for _, segment := range strings.Split(local, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", fmt.Errorf("%w: '%s' escapes the root", data.ErrInvalidPath, local)
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, segment)
		}
	}

	if len(segments) == 0 {
		return "/", nil
	}

	return "/" + strings.Join(segments, "/"), nil
}

// resolve translates a caller path into its remote counterpart, along
// with the normalized local form for reporting.
func (f *FileSystem) resolve(local string) (string, string, error) {
	normalized, err := normalizePath(local)
	if err != nil {
		return "", "", err
	}
	if normalized == "/" {
		return f.root, normalized, nil
	}

	return f.root + normalized, normalized, nil
}

// fromRemote maps a remote path back under the adapter root. Remote
// paths outside the root have no local spelling.
func (f *FileSystem) fromRemote(remote string) (string, error) {
	if remote == f.root {
		return "/", nil
	}
	if strings.HasPrefix(remote, f.root+"/") {
		return remote[len(f.root):], nil
	}

	return "", fmt.Errorf("%w: '%s' lies outside the adapter root", data.ErrInvalidPath, remote)
}

// splitPath cuts a normalized path into its parent and base name. The
// root splits into itself and an empty name.
func splitPath(local string) (string, string) {
	if local == "/" {
		return "/", ""
	}

	idx := strings.LastIndexByte(local, '/')
	if idx == 0 {
		return "/", local[1:]
	}

	return local[:idx], local[idx+1:]
}

func baseName(local string) string {
	_, name := splitPath(local)
	if name == "" {
		return "/"
	}

	return name
}

// isPathWithin reports whether child sits at or below parent, on
// segment boundaries.
func isPathWithin(parent, child string) bool {
	if parent == "/" || parent == child {
		return true
	}

	return strings.HasPrefix(child, parent+"/")
}
