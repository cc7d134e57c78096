package data

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewSessionID returns a unique identifier for a store session.
func NewSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewStagingPath derives a temporary remote name for an in-progress
// upload. The staging object lives in the same parent collection as
// the final name, so the atomic rename at close never crosses
// collections.
func NewStagingPath(remote string) string {
	parent, name := splitRemote(remote)
	return fmt.Sprintf("%s/.%s.upload-%s", parent, name, uuid.Must(uuid.NewV7()).String())
}

// IsStagingPath reports whether a remote name was generated by
// NewStagingPath. Listings can use this to recognize unfinished
// uploads left behind by crashed writers.
func IsStagingPath(remote string) bool {
	name := remote
	if idx := strings.LastIndexByte(remote, '/'); idx >= 0 {
		name = remote[idx+1:]
	}

	return strings.HasPrefix(name, ".") && strings.Contains(name, ".upload-")
}

func splitRemote(remote string) (string, string) {
	idx := strings.LastIndexByte(remote, '/')
	if idx < 0 {
		return "", remote
	}

	return remote[:idx], remote[idx+1:]
}
