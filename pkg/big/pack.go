package big

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

// packFile is one element of a repack plan: either pending content held in
// memory or a committed entry streamed from the source.
type packFile struct {
	name       string
	size       uint32
	content    []byte
	entry      Entry
	fromSource bool
}

// buildFileList resolves pending edits against committed entries into the
// list of files the next repack will emit, sorted by name. Removed files are
// dropped, including adds that were removed before ever being committed.
func (c *core) buildFileList() []packFile {
	files := make([]packFile, 0, len(c.entries)+len(c.pending))

	for name, e := range c.entries {
		if p, ok := c.pending[name]; ok {
			if p.action == actionRemove {
				continue
			}
			files = append(files, packFile{name: name, size: uint32(len(p.content)), content: p.content})
			continue
		}
		files = append(files, packFile{name: name, size: e.Size, entry: e, fromSource: true})
	}

	for name, p := range c.pending {
		if p.action != actionAdd {
			continue
		}
		if _, ok := c.entries[name]; ok {
			continue
		}
		files = append(files, packFile{name: name, size: uint32(len(p.content)), content: p.content})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files
}

// writeIndex emits the fixed header, the index table and the trailer literal
// for a repack plan, and returns the entry map matching the emitted layout.
//
// The index occupies 8 bytes per entry plus 20 fixed bytes plus each name and
// its terminator; the first payload starts one byte after the index.
func writeIndex(w io.Writer, header string, files []packFile) (map[string]Entry, error) {
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	names := make([][]byte, len(files))
	indexSize := uint64(8*len(files) + 20)
	var payloadTotal uint64
	for i, f := range files {
		enc, err := encodeLatin1(f.name)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", f.name, ErrInvalidName)
		}
		names[i] = enc
		indexSize += uint64(len(enc)) + 1
		payloadTotal += uint64(f.size)
	}

	totalSize := payloadTotal + indexSize + 1
	if totalSize > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	var fixed [16]byte
	copy(fixed[0:4], header)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(totalSize))
	binary.BigEndian.PutUint32(fixed[8:12], uint32(len(files)))
	binary.BigEndian.PutUint32(fixed[12:16], uint32(indexSize))
	if _, err := w.Write(fixed[:]); err != nil {
		return nil, err
	}

	entries := make(map[string]Entry, len(files))
	position := uint32(indexSize) + 1
	for i, f := range files {
		var rec [8]byte
		binary.BigEndian.PutUint32(rec[0:4], position)
		binary.BigEndian.PutUint32(rec[4:8], f.size)
		if _, err := w.Write(rec[:]); err != nil {
			return nil, err
		}
		if _, err := w.Write(names[i]); err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return nil, err
		}
		entries[f.name] = Entry{Name: f.name, Position: position, Size: f.size}
		position += f.size
	}

	if _, err := io.WriteString(w, trailer); err != nil {
		return nil, err
	}
	return entries, nil
}
