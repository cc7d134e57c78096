package data

import (
	"time"
)

// NodeKind distinguishes the two node types of the remote store.
// The kind of a node is fixed at creation and never changes.
type NodeKind uint8

const (
	// KindDataObject is the file equivalent: byte content plus metadata.
	KindDataObject NodeKind = iota
	// KindCollection is the directory equivalent: children, no byte content.
	KindCollection
)

func (k NodeKind) String() string {
	switch k {
	case KindDataObject:
		return "data-object"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// StatMask selects which metadata field groups a stat call should fetch.
// Name and kind are always populated; everything else is fetched only
// when requested, since some fields (checksums in particular) can be
// expensive for the remote store to produce.
type StatMask uint8

const (
	StatSize StatMask = 1 << iota
	StatTimes
	StatChecksum
	StatOwner
)

const (
	// StatBasic fetches only name and kind.
	StatBasic StatMask = 0
	// StatDefault covers the usual stat fields without remote checksums.
	StatDefault = StatSize | StatTimes
	// StatAll fetches every field group the driver can produce.
	StatAll = StatSize | StatTimes | StatChecksum | StatOwner
)

// Has checks if the mask includes all field groups of f.
func (m StatMask) Has(f StatMask) bool {
	return m&f == f
}

// ObjectStat is the raw node descriptor produced by store drivers.
// Path is the absolute remote identifier. Populated records which
// field groups the driver actually filled in.
type ObjectStat struct {
	Path string   `json:"path"`
	Kind NodeKind `json:"kind"`

	// Size in bytes; collections always report 0
	Size int64 `json:"size"`

	ModifyTime time.Time `json:"modify_time"`
	CreateTime time.Time `json:"create_time"`

	Checksum string `json:"checksum,omitempty"`
	Owner    string `json:"owner,omitempty"`

	Populated StatMask `json:"populated"`
}

// IsDir returns true when the node is a collection.
func (os *ObjectStat) IsDir() bool {
	return os.Kind == KindCollection
}

// ObjectInfo is the point-in-time metadata snapshot surfaced to callers.
// It is never updated after creation; staleness is expected.
type ObjectInfo struct {
	// Base name of the node
	Name string `json:"name"`
	// Absolute virtual path
	Path string `json:"path"`

	Kind NodeKind `json:"kind"`
	Size int64    `json:"size"`

	ModifyTime time.Time `json:"modify_time"`
	CreateTime time.Time `json:"create_time"`

	Checksum string `json:"checksum,omitempty"`
	Owner    string `json:"owner,omitempty"`

	// Fields records which field groups were requested and filled
	Fields StatMask `json:"fields"`
}

// IsDir returns true when the node is a collection.
func (oi *ObjectInfo) IsDir() bool {
	return oi.Kind == KindCollection
}

// HasChecksum reports whether a checksum was requested and populated.
func (oi *ObjectInfo) HasChecksum() bool {
	return oi.Fields.Has(StatChecksum) && oi.Checksum != ""
}
