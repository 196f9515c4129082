package dataio

import (
	"encoding/binary"
	"fmt"
	"io"

	"somtrain/internal/somerr"
)

// Iterator is a lazy, single-pass-plus-seekable reader over a binary
// image file. It is not safe for concurrent use; the owning scope must
// serialize access, and the underlying stream must outlive the iterator.
type Iterator struct {
	stream io.ReadSeeker

	numberOfEntries int
	layoutTag       int32
	extents         []int
	entrySize       int // product(extents)
	headerOffset    int64

	count   int
	current []float32
	end     bool
}

// Open parses the header of stream and loads entry 0 into the current
// slot. It fails with ErrMalformedHeader if the version preamble or
// dimensionality is invalid.
func Open(stream io.ReadSeeker) (*Iterator, error) {
	if _, err := ReadFileHeader(stream); err != nil {
		return nil, err
	}

	it := &Iterator{stream: stream}

	// 3 reserved int32 fields, ignored.
	var reserved [3]int32
	if err := binary.Read(stream, binary.LittleEndian, &reserved); err != nil {
		return nil, fmt.Errorf("%w: reserved fields: %v", somerr.ErrMalformedHeader, err)
	}

	var n int32
	if err := binary.Read(stream, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: entry count: %v", somerr.ErrMalformedHeader, err)
	}

	var layoutTag int32
	if err := binary.Read(stream, binary.LittleEndian, &layoutTag); err != nil {
		return nil, fmt.Errorf("%w: layout tag: %v", somerr.ErrMalformedHeader, err)
	}

	var dim int32
	if err := binary.Read(stream, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("%w: dimensionality: %v", somerr.ErrMalformedHeader, err)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimensionality %d must be positive", somerr.ErrMalformedHeader, dim)
	}

	extents := make([]int, dim)
	entrySize := 1
	for i := 0; i < int(dim); i++ {
		var e int32
		if err := binary.Read(stream, binary.LittleEndian, &e); err != nil {
			return nil, fmt.Errorf("%w: extent[%d]: %v", somerr.ErrMalformedHeader, i, err)
		}
		if e <= 0 {
			return nil, fmt.Errorf("%w: extent[%d]=%d must be positive", somerr.ErrMalformedHeader, i, e)
		}
		extents[i] = int(e)
		entrySize *= int(e)
	}

	offset, err := stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", somerr.ErrIO, err)
	}

	it.numberOfEntries = int(n)
	it.layoutTag = layoutTag
	it.extents = extents
	it.entrySize = entrySize
	it.headerOffset = offset

	if err := it.next(); err != nil {
		return nil, err
	}
	return it, nil
}

// Extents returns the per-entry dimensions recorded in the header.
func (it *Iterator) Extents() []int {
	return append([]int(nil), it.extents...)
}

// LayoutTag returns the raw layout tag recorded in the header (the
// original tooling's QUADRATIC/HEXAGONAL enum value).
func (it *Iterator) LayoutTag() int32 {
	return it.layoutTag
}

// EntrySize returns the number of float32 elements per entry.
func (it *Iterator) EntrySize() int {
	return it.entrySize
}

// Total returns the number of entries in the file.
func (it *Iterator) Total() int {
	return it.numberOfEntries
}

// Remaining returns the number of entries not yet consumed, excluding the
// currently loaded one.
func (it *Iterator) Remaining() int {
	r := it.numberOfEntries - it.count
	if r < 0 {
		return 0
	}
	return r
}

// Done reports whether the iterator has advanced past the last entry.
func (it *Iterator) Done() bool {
	return it.end
}

// Current returns the currently loaded entry. It is invalid to call in
// the end state.
func (it *Iterator) Current() ([]float32, error) {
	if it.end {
		return nil, fmt.Errorf("%w: iterator is exhausted", somerr.ErrIO)
	}
	return it.current, nil
}

// Advance loads the next entry, transitioning to the end state once
// count reaches Total().
func (it *Iterator) Advance() error {
	return it.next()
}

// AdvanceBy seeks forward k-1 entries (skipping their payload) then
// loads the next one. k must be >= 1.
func (it *Iterator) AdvanceBy(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: AdvanceBy step %d must be >= 1", somerr.ErrInvalidParameter, k)
	}
	skip := int64(k-1) * int64(it.entrySize) * 4
	if skip > 0 {
		if _, err := it.stream.Seek(skip, io.SeekCurrent); err != nil {
			return fmt.Errorf("%w: %v", somerr.ErrIO, err)
		}
		it.count += k - 1
	}
	return it.next()
}

// Rewind seeks back to the header offset, resets the entry count, and
// reloads entry 0.
func (it *Iterator) Rewind() error {
	if _, err := it.stream.Seek(it.headerOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", somerr.ErrIO, err)
	}
	it.count = 0
	it.end = false
	return it.next()
}

func (it *Iterator) next() error {
	if it.count >= it.numberOfEntries {
		it.end = true
		it.current = nil
		return nil
	}
	buf := make([]float32, it.entrySize)
	if err := binary.Read(it.stream, binary.LittleEndian, buf); err != nil {
		return fmt.Errorf("%w: entry %d: %v", somerr.ErrIO, it.count, err)
	}
	it.current = buf
	it.count++
	return nil
}
