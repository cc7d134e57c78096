package store

import "slices"

// Capability represents an optional feature a driver can provide.
type Capability string

const (
	// CapabilityRangeRead marks stores that can start reads at an offset.
	CapabilityRangeRead Capability = "range-read"
	// CapabilityAppend marks stores that can extend objects in place.
	CapabilityAppend Capability = "append"
	// CapabilityServerCopy marks stores that copy objects server-side.
	CapabilityServerCopy Capability = "server-copy"
)

// Capabilities describes what a driver supports. The adapter falls back
// to client-side strategies for anything missing here.
type Capabilities struct {
	Capabilities []Capability `json:"capabilities"`

	// MaxObjectSize caps object size in bytes; 0 means unbounded.
	MaxObjectSize int64 `json:"max_object_size"`
}

// Contains checks if a capability is supported.
func (c *Capabilities) Contains(cap Capability) bool {
	return slices.Contains(c.Capabilities, cap)
}
