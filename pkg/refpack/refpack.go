// Package refpack implements the RefPack compression format used for
// payloads embedded alongside BIG archives, an LZ77 variant with a fixed
// historical opcode set.
package refpack

import "errors"

const (
	// headerMagic is the two-byte big-endian marker of a framed stream,
	// followed by the 3-byte uncompressed size, low byte first.
	headerMagic0 = 0x10
	headerMagic1 = 0xFB

	// maxDeclaredSize bounds the size field a header may declare before it is
	// treated as coincidental data rather than a frame.
	maxDeclaredSize = 100_000_000

	// Match window and length limits of the opcode set.
	maxOffset   = 131071
	maxMatchLen = 1028
)

var (
	ErrSizeMismatch = errors.New("decompressed size does not match declared size")
	ErrCorrupt      = errors.New("corrupt refpack stream")
)

// HasHeader reports whether data starts with a plausible RefPack frame: the
// 0x10FB magic and a declared size that is non-zero and within bounds.
// Headerless streams exist, so a false result does not mean the data is not
// RefPack.
func HasHeader(data []byte) bool {
	if len(data) < 5 {
		return false
	}
	if data[0] != headerMagic0 || data[1] != headerMagic1 {
		return false
	}
	size := int(data[2]) | int(data[3])<<8 | int(data[4])<<16
	return size > 0 && size <= maxDeclaredSize
}

// hash3 keys the encoder's chain table on three consecutive bytes.
func hash3(a, b, c byte) int {
	return ((int(a) << 4) ^ (int(b) << 2) ^ int(c)) & 0xFFFF
}

// matchLen counts the bytes s and d have in common, up to max. Both slices
// come from the same input, so an overlapping match extends naturally.
func matchLen(s, d []byte, max int) int {
	n := 0
	for n < max && s[n] == d[n] {
		n++
	}
	return n
}

// Compress encodes src as a framed RefPack stream: a 5-byte header followed
// by opcodes. Matches are found through a hash chain over 3-byte keys and are
// only taken when they beat literal emission for the opcode class that can
// encode them.
func Compress(src []byte) []byte {
	length := len(src)

	out := make([]byte, 0, length/2+16)
	out = append(out, headerMagic0, headerMagic1,
		byte(length), byte(length>>8), byte(length>>16))

	hashtbl := make([]int, 1<<16)
	for i := range hashtbl {
		hashtbl[i] = -1
	}
	link := make([]int, maxOffset+1)

	run := 0
	cptr := 0
	rptr := 0

	for cptr < length {
		boffset := 0
		blen := 2
		bcost := 2
		mlen := min(length-cptr, maxMatchLen)
		if cptr+2 >= length {
			mlen = 0
		}

		if mlen >= 3 {
			h := hash3(src[cptr], src[cptr+1], src[cptr+2])
			hoffset := hashtbl[h]
			minhoffset := max(cptr-maxOffset, 0)

			for hoffset >= minhoffset {
				tptr := hoffset
				if cptr+blen < length && src[cptr+blen] == src[tptr+blen] {
					tlen := matchLen(src[cptr:], src[tptr:], mlen)
					if tlen > blen {
						toffset := (cptr - 1) - tptr
						var tcost int
						switch {
						case toffset < 1024 && tlen <= 10:
							tcost = 2
						case toffset < 16384 && tlen <= 67:
							tcost = 3
						default:
							tcost = 4
						}

						if tlen-tcost > blen-bcost {
							blen = tlen
							bcost = tcost
							boffset = toffset
							if blen >= maxMatchLen {
								break
							}
						}
					}
				}
				hoffset = link[hoffset&maxOffset]
			}
		}

		if bcost >= blen {
			h := 0
			if cptr+2 < length {
				h = hash3(src[cptr], src[cptr+1], src[cptr+2])
			}
			link[cptr&maxOffset] = hashtbl[h]
			hashtbl[h] = cptr

			run++
			cptr++
			continue
		}

		for run > 3 {
			tlen := min(112, run&^3)
			run -= tlen
			out = append(out, byte(0xE0+(tlen>>2)-1))
			out = append(out, src[rptr:rptr+tlen]...)
			rptr += tlen
		}

		switch bcost {
		case 2:
			out = append(out,
				byte(((boffset>>8)<<5)+((blen-3)<<2)+run),
				byte(boffset))
		case 3:
			out = append(out,
				byte(0x80+(blen-4)),
				byte((run<<6)+(boffset>>8)),
				byte(boffset))
		default:
			out = append(out,
				byte(0xC0+((boffset>>16)<<4)+(((blen-5)>>8)<<2)+run),
				byte(boffset>>8),
				byte(boffset),
				byte(blen-5))
		}

		if run > 0 {
			out = append(out, src[rptr:rptr+run]...)
			run = 0
		}

		for i := 0; i < blen; i++ {
			if cptr+2 < length {
				h := hash3(src[cptr], src[cptr+1], src[cptr+2])
				link[cptr&maxOffset] = hashtbl[h]
				hashtbl[h] = cptr
			}
			cptr++
		}
		rptr = cptr
	}

	for run > 3 {
		tlen := min(112, run&^3)
		run -= tlen
		out = append(out, byte(0xE0+(tlen>>2)-1))
		out = append(out, src[rptr:rptr+tlen]...)
		rptr += tlen
	}

	out = append(out, byte(0xFC+run))
	if run > 0 {
		out = append(out, src[rptr:rptr+run]...)
	}

	return out
}

// Decompress decodes a RefPack stream, framed or headerless. If the stream
// carries a header, the output length must match the declared size.
func Decompress(data []byte) ([]byte, error) {
	return decompress(data, false)
}

// DecompressIgnoreMismatch decodes like Decompress but tolerates a declared
// size that disagrees with the decoded length.
func DecompressIgnoreMismatch(data []byte) ([]byte, error) {
	return decompress(data, true)
}

func decompress(data []byte, ignoreMismatch bool) ([]byte, error) {
	// The header is stripped on the magic alone. Unlike HasHeader, no sanity
	// bound applies here: a frame with a corrupted size field must surface as
	// a size mismatch, not be re-read as headerless opcodes.
	expected := -1
	if len(data) >= 5 && data[0] == headerMagic0 && data[1] == headerMagic1 {
		expected = int(data[2]) | int(data[3])<<8 | int(data[4])<<16
		data = data[5:]
	}

	capHint := len(data) * 2
	if expected >= 0 {
		capHint = expected
	}
	out := make([]byte, 0, capHint)

	index := 0
	need := func(n int) bool { return index+n <= len(data) }

	// copyRef appends length bytes starting offset+1 back from the end of the
	// output. The copy is byte-by-byte: the window may overlap bytes written
	// by this same command, which is how the format encodes run-length fills.
	copyRef := func(offset, length int) error {
		ref := len(out) - 1 - offset
		if ref < 0 {
			return ErrCorrupt
		}
		for i := 0; i < length; i++ {
			out = append(out, out[ref])
			ref++
		}
		return nil
	}

	literal := func(n int) error {
		if !need(n) {
			return ErrCorrupt
		}
		out = append(out, data[index:index+n]...)
		index += n
		return nil
	}

	for {
		if !need(1) {
			return nil, ErrCorrupt
		}
		first := int(data[index])
		index++

		switch {
		case first&0x80 == 0: // short back-reference
			if !need(1) {
				return nil, ErrCorrupt
			}
			second := int(data[index])
			index++
			if err := literal(first & 3); err != nil {
				return nil, err
			}
			offset := ((first & 0x60) << 3) + second
			if err := copyRef(offset, ((first&0x1C)>>2)+3); err != nil {
				return nil, err
			}

		case first&0x40 == 0: // medium back-reference
			if !need(2) {
				return nil, ErrCorrupt
			}
			second := int(data[index])
			third := int(data[index+1])
			index += 2
			if err := literal(second >> 6); err != nil {
				return nil, err
			}
			offset := ((second & 0x3F) << 8) + third
			if err := copyRef(offset, (first&0x3F)+4); err != nil {
				return nil, err
			}

		case first&0x20 == 0: // long back-reference
			if !need(3) {
				return nil, ErrCorrupt
			}
			second := int(data[index])
			third := int(data[index+1])
			fourth := int(data[index+2])
			index += 3
			if err := literal(first & 3); err != nil {
				return nil, err
			}
			offset := ((first & 0x10) >> 4 << 16) + (second << 8) + third
			length := ((first&0x0C)>>2)<<8 + fourth + 5
			if err := copyRef(offset, length); err != nil {
				return nil, err
			}

		default: // literal run or EOF
			run := ((first & 0x1F) << 2) + 4
			if run <= 112 {
				if err := literal(run); err != nil {
					return nil, err
				}
				continue
			}
			if err := literal(first & 3); err != nil {
				return nil, err
			}
			if expected >= 0 && expected != len(out) && !ignoreMismatch {
				return nil, ErrSizeMismatch
			}
			return out, nil
		}
	}
}
