package big

import (
	"bytes"
	"fmt"
	"io"

	"github.com/natefinch/atomic"
)

// Archive is the in-memory back-end. The whole source archive is held as a
// byte buffer; repacking builds a replacement buffer and swaps it in. All
// disk activity is explicit through Save.
type Archive struct {
	core
	data []byte
}

// New parses an archive from its raw bytes.
func New(data []byte) (*Archive, error) {
	header, entries, warnings, err := parseIndex(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	a := &Archive{data: data}
	a.core = newCore(header)
	a.entries = entries
	a.warnings = warnings
	a.src = a
	return a, nil
}

// Empty creates an archive with no entries. An empty header defaults to BIG4.
func Empty(header string) (*Archive, error) {
	if header == "" {
		header = HeaderBIG4
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	a := &Archive{}
	a.core = newCore(header)
	a.src = a
	return a, nil
}

// FromDirectory builds an archive from a directory tree. Every file found
// becomes an entry named by its path relative to dir, with '\' separators.
func FromDirectory(dir, header string) (*Archive, error) {
	a, err := Empty(header)
	if err != nil {
		return nil, err
	}
	if err := addTree(&a.core, dir); err != nil {
		return nil, err
	}
	if err := a.Repack(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) payload(e Entry) ([]byte, error) {
	end := int64(e.Position) + int64(e.Size)
	if end > int64(len(a.data)) {
		return nil, fmt.Errorf("%q: %w", e.Name, io.ErrUnexpectedEOF)
	}
	out := make([]byte, e.Size)
	copy(out, a.data[e.Position:end])
	return out, nil
}

func (a *Archive) writePayload(w io.Writer, e Entry) error {
	end := int64(e.Position) + int64(e.Size)
	if end > int64(len(a.data)) {
		return fmt.Errorf("%q: %w", e.Name, io.ErrUnexpectedEOF)
	}
	_, err := w.Write(a.data[e.Position:end])
	return err
}

// Repack commits all pending edits, rewriting the archive buffer with the new
// layout and clearing the pending set.
func (a *Archive) Repack() error {
	files := a.buildFileList()

	var buf bytes.Buffer
	entries, err := writeIndex(&buf, a.header, files)
	if err != nil {
		return err
	}
	if err := a.emitPayloads(&buf, files); err != nil {
		return err
	}

	a.data = buf.Bytes()
	a.entries = entries
	a.pending = make(map[string]pendingEdit)
	return nil
}

// Bytes commits pending edits and returns the archive as a contiguous buffer.
// The buffer is the archive's own backing store and must not be modified.
func (a *Archive) Bytes() ([]byte, error) {
	if err := a.Repack(); err != nil {
		return nil, err
	}
	return a.data, nil
}

// Save commits pending edits and writes the archive to path. The write goes
// through a temporary file and an atomic replace, so a crash cannot leave a
// half-written archive behind.
func (a *Archive) Save(path string) error {
	if err := a.Repack(); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(a.data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
