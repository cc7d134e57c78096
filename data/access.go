package data

// AccessMode represents access modes for opening data objects.
// These modes control how streams are opened (read, write, append, etc.).
type AccessMode int

// Access mode constants.
// These can be combined using bitwise OR.
const (
	AccessModeRead   AccessMode = 1 << iota // open for reading
	AccessModeWrite                         // open for writing
	AccessModeAppend                        // keep existing content, cursor at end
	AccessModeCreate                        // create if not exists
	AccessModeTrunc                         // drop existing content on open
	AccessModeExcl                          // exclusive creation (with CREATE)
)

// Composite write modes accepted by OpenWrite.
const (
	// WriteTruncate replaces the object content, creating it when missing.
	WriteTruncate = AccessModeWrite | AccessModeCreate | AccessModeTrunc
	// WriteAppend keeps existing content and appends, creating when missing.
	WriteAppend = AccessModeWrite | AccessModeCreate | AccessModeAppend
	// WriteExclusive creates the object and fails when it already exists.
	WriteExclusive = AccessModeWrite | AccessModeCreate | AccessModeExcl
)

// IsReadOnly checks if the mode only allows reading.
func (m AccessMode) IsReadOnly() bool {
	return m&AccessModeRead != 0 && m&AccessModeWrite == 0
}

// IsWriteOnly checks if the mode only allows writing.
func (m AccessMode) IsWriteOnly() bool {
	return m&AccessModeWrite != 0 && m&AccessModeRead == 0
}

// HasAppend checks if the mode includes append.
func (m AccessMode) HasAppend() bool {
	return m&AccessModeAppend != 0
}

// HasCreate checks if the mode includes create.
func (m AccessMode) HasCreate() bool {
	return m&AccessModeCreate != 0
}

// HasTrunc checks if the mode includes truncate.
func (m AccessMode) HasTrunc() bool {
	return m&AccessModeTrunc != 0
}

// HasExcl checks if the mode includes exclusive creation.
func (m AccessMode) HasExcl() bool {
	return m&AccessModeExcl != 0
}
