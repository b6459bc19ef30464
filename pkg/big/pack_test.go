package big

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readRawIndex decodes the index table in emitted order, which the map-based
// Entries accessor cannot preserve.
func readRawIndex(t *testing.T, data []byte) []Entry {
	t.Helper()

	count := binary.BigEndian.Uint32(data[8:12])
	br := bufio.NewReader(bytes.NewReader(data[16:]))

	entries := make([]Entry, count)
	for i := range entries {
		var rec [8]byte
		_, err := io.ReadFull(br, rec[:])
		require.NoError(t, err)

		name, err := readCString(br)
		require.NoError(t, err)

		entries[i] = Entry{
			Name:     name,
			Position: binary.BigEndian.Uint32(rec[0:4]),
			Size:     binary.BigEndian.Uint32(rec[4:8]),
		}
	}
	return entries
}

func TestEmptyArchiveLayout(t *testing.T) {
	archive, err := Empty(HeaderBIG4)
	require.NoError(t, err)

	data, err := archive.Bytes()
	require.NoError(t, err)

	require.Len(t, data, 21)
	assert.Equal(t, "BIG4", string(data[0:4]))
	assert.Equal(t, uint32(21), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(data[8:12]))
	assert.Equal(t, uint32(20), binary.BigEndian.Uint32(data[12:16]))
	assert.Equal(t, "L253\x00", string(data[16:21]))
}

func TestSingleEntryLayout(t *testing.T) {
	archive, err := Empty(HeaderBIG4)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile(`a\b.txt`, []byte("hi")))

	data, err := archive.Bytes()
	require.NoError(t, err)

	// index: 8 + 20 + len("a\b.txt")+1 = 36; first payload one past it.
	assert.Equal(t, uint32(36), binary.BigEndian.Uint32(data[12:16]))
	assert.Equal(t, uint32(39), binary.LittleEndian.Uint32(data[4:8]))

	raw := readRawIndex(t, data)
	require.Len(t, raw, 1)
	assert.Equal(t, Entry{Name: `a\b.txt`, Position: 37, Size: 2}, raw[0])
	assert.Equal(t, "hi", string(data[37:39]))
}

func TestIndexSortedAndContiguous(t *testing.T) {
	archive, err := Empty(HeaderBIGF)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile("zeta", bytes.Repeat([]byte("z"), 7)))
	require.NoError(t, archive.AddFile("Alpha", []byte("AA")))
	require.NoError(t, archive.AddFile("alpha", []byte("aaa")))
	require.NoError(t, archive.AddFile(`nested\deep\file`, nil))

	data, err := archive.Bytes()
	require.NoError(t, err)

	raw := readRawIndex(t, data)
	require.Len(t, raw, 4)

	indexSize := binary.BigEndian.Uint32(data[12:16])
	assert.Equal(t, indexSize+1, raw[0].Position)

	for i := 0; i < len(raw)-1; i++ {
		assert.Less(t, raw[i].Name, raw[i+1].Name, "index must be strictly sorted")
		assert.Equal(t, raw[i].Position+raw[i].Size, raw[i+1].Position, "payloads must be contiguous")
	}

	last := raw[len(raw)-1]
	assert.Equal(t, uint64(len(data)), uint64(last.Position)+uint64(last.Size))
}

func TestRemoveRepackLayout(t *testing.T) {
	archive, err := Empty(HeaderBIG4)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile("a", []byte("alpha")))
	require.NoError(t, archive.AddFile("b", []byte("bravo")))
	require.NoError(t, archive.AddFile("c", []byte("charlie")))
	require.NoError(t, archive.Repack())

	require.NoError(t, archive.RemoveFile("b"))

	data, err := archive.Bytes()
	require.NoError(t, err)

	raw := readRawIndex(t, data)
	require.Len(t, raw, 2)

	// index: 16 + 20 + 2*(1+1) = 40, payloads from 41.
	assert.Equal(t, Entry{Name: "a", Position: 41, Size: 5}, raw[0])
	assert.Equal(t, Entry{Name: "c", Position: 46, Size: 7}, raw[1])
	assert.Equal(t, "alpha", string(data[41:46]))
	assert.Equal(t, "charlie", string(data[46:53]))
}

func TestRepackIdempotent(t *testing.T) {
	archive, err := Empty(HeaderBIG4)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile("one", []byte("1")))
	require.NoError(t, archive.AddFile("two", []byte("22")))

	first, err := archive.Bytes()
	require.NoError(t, err)
	firstCopy := append([]byte(nil), first...)

	second, err := archive.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(firstCopy, second))
}

func TestRoundTrip(t *testing.T) {
	archive, err := Empty(HeaderBIGF)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile(`data\ini\weapon.ini`, []byte("damage = 9000")))
	require.NoError(t, archive.AddFile(`data\str\game.str`, []byte("hello")))
	require.NoError(t, archive.AddFile("empty", nil))

	data, err := archive.Bytes()
	require.NoError(t, err)

	parsed, err := New(data)
	require.NoError(t, err)

	assert.Equal(t, HeaderBIGF, parsed.Header())
	assert.Empty(t, parsed.Warnings())
	if diff := cmp.Diff(archive.Entries(), parsed.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	content, err := parsed.ReadFile(`data\ini\weapon.ini`)
	require.NoError(t, err)
	assert.Equal(t, []byte("damage = 9000"), content)
}

func TestHeaderPreserved(t *testing.T) {
	archive, err := Empty(HeaderBIGF)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile("f", []byte("x")))

	data, err := archive.Bytes()
	require.NoError(t, err)

	parsed, err := New(data)
	require.NoError(t, err)
	require.NoError(t, parsed.AddFile("g", []byte("y")))

	repacked, err := parsed.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "BIGF", string(repacked[0:4]), "tag read must be re-emitted, never forced to BIG4")
}

func TestLatin1NameRoundTrip(t *testing.T) {
	name := "café\\menü.ini"

	archive, err := Empty(HeaderBIG4)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile(name, []byte("x")))

	data, err := archive.Bytes()
	require.NoError(t, err)

	parsed, err := New(data)
	require.NoError(t, err)
	assert.True(t, parsed.FileExists(name))

	// On the wire the name is one byte per rune.
	enc, err := encodeLatin1(name)
	require.NoError(t, err)
	assert.Equal(t, uint32(8*1+20+len(enc)+1), binary.BigEndian.Uint32(data[12:16]))
}

func TestDuplicateIndexEntries(t *testing.T) {
	archive, err := Empty(HeaderBIG4)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile("x", []byte("AA")))
	require.NoError(t, archive.AddFile("y", []byte("BB")))

	data, err := archive.Bytes()
	require.NoError(t, err)

	// Rename the second record to collide with the first; the later record
	// must shadow the earlier one and be reported, never rejected.
	idx := bytes.IndexByte(data, 'y')
	require.NotEqual(t, -1, idx)
	data[idx] = 'x'

	parsed, err := New(data)
	require.NoError(t, err)
	require.Len(t, parsed.Entries(), 1)

	content, err := parsed.ReadFile("x")
	require.NoError(t, err)
	assert.Equal(t, []byte("BB"), content)

	require.Len(t, parsed.Warnings(), 1)
	assert.Contains(t, parsed.Warnings()[0], "duplicate")
}

func TestAdvisorySizeMismatch(t *testing.T) {
	archive := testArchive(t)
	data, err := archive.Bytes()
	require.NoError(t, err)

	grown := append(append([]byte(nil), data...), 0xAB)

	parsed, err := New(grown)
	require.NoError(t, err, "total_size is advisory")
	require.Len(t, parsed.Warnings(), 1)
	assert.Contains(t, parsed.Warnings()[0], "does not match")

	content, err := parsed.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, []byte(testContent), content)
}

func TestParseErrors(t *testing.T) {
	valid, err := testArchive(t).Bytes()
	require.NoError(t, err)

	t.Run("empty input", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrTruncatedHeader)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := New(valid[:10])
		assert.ErrorIs(t, err, ErrTruncatedHeader)
	})

	t.Run("wrong magic", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		copy(bad, "MEGA")
		_, err := New(bad)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("truncated index record", func(t *testing.T) {
		_, err := New(valid[:20])
		assert.ErrorIs(t, err, ErrTruncatedIndex)
	})

	t.Run("hostile entry count", func(t *testing.T) {
		// A tiny archive declaring ~4 billion entries must fail on the first
		// missing record, not try to allocate for the declared count.
		hostile := append([]byte(nil), valid[:16]...)
		binary.BigEndian.PutUint32(hostile[8:12], 0xFFFFFFFE)
		_, err := New(hostile)
		assert.ErrorIs(t, err, ErrTruncatedIndex)
	})

	t.Run("truncated name", func(t *testing.T) {
		// Cut inside the name, before its terminator.
		_, err := New(valid[:24+len(testFile)/2])
		assert.ErrorIs(t, err, ErrTruncatedName)
	})
}

func TestPayloadPastEnd(t *testing.T) {
	data, err := testArchive(t).Bytes()
	require.NoError(t, err)

	// Drop the payload region; the index still declares it.
	parsed, err := New(data[:len(data)-len(testContent)])
	require.NoError(t, err)

	_, err = parsed.ReadFile(testFile)
	assert.Error(t, err)
}
