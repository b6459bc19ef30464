// Package big handles BIG4/BIGF container archives.
package big

import "io"

// Archive header tags. The tag read from an existing archive is preserved
// verbatim and re-emitted on repack.
const (
	HeaderBIG4 = "BIG4"
	HeaderBIGF = "BIGF"
)

// trailer is the literal written between the index table and the first
// payload. Some third-party tools omit it, so it is never validated on read.
const trailer = "L253\x00"

// Entry represents a single committed file in the archive index.
type Entry struct {
	Name     string // path with '\' separators, Latin-1 on the wire
	Position uint32 // absolute payload offset within the archive
	Size     uint32 // payload length in bytes
}

// fileAction tags a pending edit.
type fileAction int

const (
	actionAdd fileAction = iota
	actionEdit
	actionRemove
)

// pendingEdit is an uncommitted mutation. Content is nil for removals.
type pendingEdit struct {
	name    string
	action  fileAction
	content []byte
}

// backend supplies committed payload bytes for one entry, either as a buffer
// or streamed into a writer during repack. Each back-end variant implements
// it against its own source (byte buffer or file path).
type backend interface {
	payload(e Entry) ([]byte, error)
	writePayload(w io.Writer, e Entry) error
}

// core holds the state shared by both back-ends: the committed index, the
// pending edits that shadow it, and parse diagnostics.
type core struct {
	header   string
	entries  map[string]Entry
	pending  map[string]pendingEdit
	warnings []string
	src      backend
}

func newCore(header string) core {
	return core{
		header:  header,
		entries: make(map[string]Entry),
		pending: make(map[string]pendingEdit),
	}
}
