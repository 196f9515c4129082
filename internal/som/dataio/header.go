// Package dataio implements the lazy, seekable iterator over the SOM
// engine's fixed binary image format, plus the file-header reader that
// resolves the format's version preamble.
package dataio

import (
	"encoding/binary"
	"fmt"
	"io"

	"somtrain/internal/somerr"
)

// magic identifies a v2 file. v1 files have no preamble and begin
// directly with the reserved fields.
const magic uint32 = 0x50494e4b // "PINK" little-endian encoded

// Version1 and Version2 identify the on-disk layout.
const (
	Version1 = 1
	Version2 = 2
)

// Header describes the version preamble read from a stream.
type Header struct {
	Version uint32
}

// ReadFileHeader is the external collaborator named in the specification
// (get_file_header): it peeks the first four bytes of the stream to
// detect a v2 magic/version preamble. If present, the preamble is
// consumed and the stream is left positioned just after it. If absent,
// the stream is rewound to its starting position so the caller can read
// the legacy v1 reserved fields from byte zero. Fails with
// ErrMalformedHeader on a short read or an unrecognised version.
func ReadFileHeader(rs io.ReadSeeker) (Header, error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", somerr.ErrIO, err)
	}

	var candidate uint32
	if err := binary.Read(rs, binary.LittleEndian, &candidate); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, fmt.Errorf("%w: file too short for header", somerr.ErrMalformedHeader)
		}
		return Header{}, fmt.Errorf("%w: %v", somerr.ErrIO, err)
	}

	if candidate != magic {
		if _, err := rs.Seek(start, io.SeekStart); err != nil {
			return Header{}, fmt.Errorf("%w: %v", somerr.ErrIO, err)
		}
		return Header{Version: Version1}, nil
	}

	var version uint32
	if err := binary.Read(rs, binary.LittleEndian, &version); err != nil {
		return Header{}, fmt.Errorf("%w: truncated version preamble", somerr.ErrMalformedHeader)
	}
	if version != Version2 {
		return Header{}, fmt.Errorf("%w: unsupported version %d", somerr.ErrMalformedHeader, version)
	}
	return Header{Version: Version2}, nil
}
