package big

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// FileArchive is the on-disk back-end. Only the index is kept in memory;
// payloads are read from the file on demand and streamed through a temporary
// file on repack, so archives larger than RAM can be rewritten. No file
// handle is held between calls.
type FileArchive struct {
	core
	path string
}

// Open parses the index of the archive at path. Payloads stay on disk.
func Open(path string) (*FileArchive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	header, entries, warnings, err := parseIndex(f, info.Size())
	if err != nil {
		return nil, err
	}

	a := &FileArchive{path: path}
	a.core = newCore(header)
	a.entries = entries
	a.warnings = warnings
	a.src = a
	return a, nil
}

// Create makes an empty on-disk archive at path. The file is written as a
// zero-byte placeholder and becomes a valid archive on the first repack.
// Create fails if path already exists.
func Create(path, header string) (*FileArchive, error) {
	if header == "" {
		header = HeaderBIG4
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	a := &FileArchive{path: path}
	a.core = newCore(header)
	a.src = a
	return a, nil
}

// CreateFromDirectory builds an on-disk archive at path from a directory
// tree, the streaming counterpart of FromDirectory.
func CreateFromDirectory(dir, path, header string) (*FileArchive, error) {
	a, err := Create(path, header)
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

// Path returns the file the archive currently reads from and repacks to.
func (a *FileArchive) Path() string {
	return a.path
}

func (a *FileArchive) payload(e Entry) ([]byte, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", e.Name, err)
	}
	defer f.Close()

	buf := make([]byte, e.Size)
	if _, err := f.ReadAt(buf, int64(e.Position)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read %q: %w", e.Name, err)
	}
	return buf, nil
}

func (a *FileArchive) writePayload(w io.Writer, e Entry) error {
	f, err := os.Open(a.path)
	if err != nil {
		return fmt.Errorf("read %q: %w", e.Name, err)
	}
	defer f.Close()

	sr := io.NewSectionReader(f, int64(e.Position), int64(e.Size))
	n, err := io.Copy(w, sr)
	if err != nil {
		return fmt.Errorf("read %q: %w", e.Name, err)
	}
	if n != int64(e.Size) {
		return fmt.Errorf("%q: %w", e.Name, io.ErrUnexpectedEOF)
	}
	return nil
}

// repackTo writes the committed layout to a temporary file in the target
// directory, then atomically replaces dst. The original archive is untouched
// until the replace; a failure removes the temporary file and leaves dst as
// it was.
func (a *FileArchive) repackTo(dst string) error {
	files := a.buildFileList()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".big-repack-*")
	if err != nil {
		return fmt.Errorf("repack: %w", err)
	}
	tmpName := tmp.Name()

	discard := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	entries, err := writeIndex(w, a.header, files)
	if err != nil {
		return discard(err)
	}
	if err := a.emitPayloads(w, files); err != nil {
		return discard(err)
	}
	if err := w.Flush(); err != nil {
		return discard(fmt.Errorf("repack: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("repack: %w", err)
	}

	if err := atomic.ReplaceFile(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("repack %s: %w", dst, err)
	}

	a.path = dst
	a.entries = entries
	a.pending = make(map[string]pendingEdit)
	return nil
}

// Repack commits all pending edits and rewrites the archive file in place.
func (a *FileArchive) Repack() error {
	return a.repackTo(a.path)
}

// Save commits pending edits and writes the archive to path; an empty path
// rewrites the current file. The archive reads from path afterwards.
func (a *FileArchive) Save(path string) error {
	if path == "" {
		path = a.path
	}
	return a.repackTo(path)
}

// Bytes commits pending edits and reads the whole archive file back as a
// contiguous buffer.
func (a *FileArchive) Bytes() ([]byte, error) {
	if err := a.Repack(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return data, nil
}
