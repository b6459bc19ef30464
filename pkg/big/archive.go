package big

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Header returns the archive's four-byte tag (BIG4, BIGF, ...).
func (c *core) Header() string {
	return c.header
}

// Entries returns the committed index. Pending edits are not reflected;
// callers that want the pending view should use List and ReadFile. The map is
// the archive's own and must not be modified.
func (c *core) Entries() map[string]Entry {
	return c.entries
}

// Warnings returns the diagnostics recorded while parsing the archive, such
// as duplicate index entries or a total_size field that disagrees with the
// actual archive length.
func (c *core) Warnings() []string {
	return c.warnings
}

// FileExists reports whether a file exists, consulting pending edits first:
// a pending removal hides a committed entry, a pending add is visible before
// repack.
func (c *core) FileExists(name string) bool {
	if p, ok := c.pending[name]; ok {
		return p.action != actionRemove
	}
	_, ok := c.entries[name]
	return ok
}

// List returns the sorted names of all files, combining committed entries and
// pending adds and excluding pending removals.
func (c *core) List() []string {
	names := make([]string, 0, len(c.entries)+len(c.pending))
	for name := range c.entries {
		if p, ok := c.pending[name]; ok && p.action == actionRemove {
			continue
		}
		names = append(names, name)
	}
	for name, p := range c.pending {
		if p.action == actionRemove {
			continue
		}
		if _, ok := c.entries[name]; ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the contents of a file. Pending adds and edits shadow the
// committed archive.
func (c *core) ReadFile(name string) ([]byte, error) {
	if !c.FileExists(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if p, ok := c.pending[name]; ok {
		return p.content, nil
	}
	return c.src.payload(c.entries[name])
}

// AddFile marks a file to be added. The archive itself is not modified until
// Repack. Names use '\' as directory separator and must be representable in
// Latin-1.
func (c *core) AddFile(name string, content []byte) error {
	if c.FileExists(name) {
		return fmt.Errorf("%q: %w", name, ErrExists)
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("%q contains '/', use '\\' instead: %w", name, ErrInvalidName)
	}
	if _, err := encodeLatin1(name); err != nil {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	c.pending[name] = pendingEdit{name: name, action: actionAdd, content: content}
	return nil
}

// EditFile marks an existing file for replacement with new content,
// overriding any earlier pending edit for the same name. Editing a file that
// only exists as a pending add keeps it an add.
func (c *core) EditFile(name string, content []byte) error {
	if !c.FileExists(name) {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	action := actionEdit
	if p, ok := c.pending[name]; ok && p.action == actionAdd {
		action = actionAdd
	}
	c.pending[name] = pendingEdit{name: name, action: action, content: content}
	return nil
}

// RemoveFile marks an existing file for deletion on the next repack. Removing
// a file that only exists as a pending add cancels the add.
func (c *core) RemoveFile(name string) error {
	if !c.FileExists(name) {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	c.pending[name] = pendingEdit{name: name, action: actionRemove}
	return nil
}

// MemorySize returns the number of content bytes currently held by pending
// adds and edits. Callers can use it to decide when to repack.
func (c *core) MemorySize() int {
	total := 0
	for _, p := range c.pending {
		if p.action == actionRemove {
			continue
		}
		total += len(p.content)
	}
	return total
}

// emitPayloads writes the payload region for a repack plan, streaming
// untouched entries from the back-end and pending content from memory.
func (c *core) emitPayloads(w io.Writer, files []packFile) error {
	for _, f := range files {
		if f.fromSource {
			if err := c.src.writePayload(w, f.entry); err != nil {
				return err
			}
			continue
		}
		if _, err := w.Write(f.content); err != nil {
			return err
		}
	}
	return nil
}
