package segchain

import (
	"bytes"
	"strings"
)

// Chain is an ordered sequence of byte segments that together represent the
// data received so far on one connection. Conceptually it behaves like one
// contiguous []byte, but the segments are never copied together: appending a
// delivery only records a reference to its storage.
//
// A Chain does not own the memory it references. The producer of each segment
// must keep that memory valid and unmodified for as long as the segment is
// part of the chain.
//
// The zero value is an empty Chain ready to use.
type Chain struct {
	seg    [][]byte
	length int64
}

// The new Chain references data directly, without copying.
func New(data []byte) Chain {
	return Chain{
		seg:    [][]byte{data},
		length: int64(len(data)),
	}
}

// Append adds the segments of delta to the end of c.
func (c *Chain) Append(delta Chain) {
	c.seg = append(c.seg, delta.seg...)
	c.length += delta.length
}

// Clear drops all segment references. The chain is empty afterwards; the
// segments' backing storage is unaffected.
func (c *Chain) Clear() {
	c.seg = c.seg[:0]
	c.length = 0
}

// Len returns the total number of bytes in the chain.
func (c Chain) Len() int64 {
	return c.length
}

// ByteAt returns the byte at the given offset. The second result is false if
// the offset is out of range.
func (c Chain) ByteAt(offset int64) (byte, bool) {
	if offset < 0 {
		return 0, false
	}
	for _, s := range c.seg {
		ls := int64(len(s))
		if offset < ls {
			return s[offset], true
		}
		offset -= ls
	}
	return 0, false
}

// HasPrefixAt reports whether the bytes of the chain starting at offset equal
// lit. Returns false if fewer than len(lit) bytes remain at offset.
func (c Chain) HasPrefixAt(offset int64, lit []byte) bool {
	if offset < 0 || offset+int64(len(lit)) > c.length {
		return false
	}
	for _, s := range c.seg {
		if len(lit) == 0 {
			return true
		}
		ls := int64(len(s))
		if offset >= ls {
			offset -= ls
			continue
		}
		n := int64(len(lit))
		if avail := ls - offset; n > avail {
			n = avail
		}
		if !bytes.Equal(s[offset:offset+n], lit[:n]) {
			return false
		}
		lit = lit[n:]
		offset = 0
	}
	return len(lit) == 0
}

// Slice returns a copy of c[start:end] in one contiguous slice. Returns nil
// if start is negative, start > end, or end is out of range.
func (c Chain) Slice(start, end int64) []byte {
	if !(0 <= start && start <= end && end <= c.length) {
		return nil
	}

	out := make([]byte, 0, end-start)
	for _, s := range c.seg {
		ls := int64(len(s))
		if start >= ls {
			start -= ls
			end -= ls
			continue
		}
		stop := end
		if stop > ls {
			stop = ls
		}
		out = append(out, s[start:stop]...)
		start = 0
		end -= ls
		if end <= 0 {
			break
		}
	}
	return out
}

// LinearRun returns the longest contiguous run of bytes starting at offset,
// without copying. Returns nil when offset is at or past the end of the
// chain. Iterating runs and advancing offset by len(run) visits every byte of
// the chain exactly once.
func (c Chain) LinearRun(offset int64) []byte {
	if offset < 0 || offset >= c.length {
		return nil
	}
	for _, s := range c.seg {
		ls := int64(len(s))
		if offset < ls {
			return s[offset:]
		}
		offset -= ls
	}
	return nil
}

// Index returns the offset of the first occurrence of sep at or after start,
// or -1 if sep is not present. The search is correct for occurrences that
// span segment boundaries, including patterns with repeated prefixes.
func (c Chain) Index(start int64, sep []byte) int64 {
	if start < 0 {
		start = 0
	}
	if start > c.length {
		return -1
	}
	if len(sep) == 0 {
		return start
	}

	// tail carries up to len(sep)-1 bytes from the end of the segments already
	// scanned, so boundary-spanning occurrences are found by searching a small
	// stitched window of tail + the head of the current segment.
	tail := make([]byte, 0, len(sep)-1)
	var tailStart int64 // global offset of tail[0]
	var base int64      // global offset of the current segment

	for _, s := range c.seg {
		if len(s) == 0 {
			continue
		}

		var boundary int64 = -1
		if len(tail) > 0 {
			head := len(sep) - 1
			if head > len(s) {
				head = len(s)
			}
			win := append(append(make([]byte, 0, len(tail)+head), tail...), s[:head]...)
			from := start - tailStart
			if from < 0 {
				from = 0
			}
			if from < int64(len(win)) {
				if i := bytes.Index(win[from:], sep); i >= 0 {
					boundary = tailStart + from + int64(i)
				}
			}
		}

		var within int64 = -1
		from := start - base
		if from < 0 {
			from = 0
		}
		if from < int64(len(s)) {
			if i := bytes.Index(s[from:], sep); i >= 0 {
				within = base + from + int64(i)
			}
		}

		switch {
		case boundary >= 0 && (within < 0 || boundary < within):
			return boundary
		case within >= 0:
			return within
		}

		// Roll the tail forward over this segment.
		keep := len(sep) - 1
		if len(s) >= keep {
			tail = append(tail[:0], s[len(s)-keep:]...)
		} else {
			tail = append(tail, s...)
			if len(tail) > keep {
				tail = append(tail[:0], tail[len(tail)-keep:]...)
			}
		}
		base += int64(len(s))
		tailStart = base - int64(len(tail))
	}

	return -1
}

// String copies all bytes of the chain into a string.
func (c Chain) String() string {
	var b strings.Builder
	b.Grow(int(c.length))
	for _, s := range c.seg {
		b.Write(s)
	}
	return b.String()
}
