// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package decompress

import (
	"io"

	"github.com/pkg/errors"
)

// headerReader is an implementation of io.Reader that allows the first bytes of
// the reader to be read twice. This is useful for identifying the compression
// format before decompressing.
type headerReader struct {
	r      io.Reader
	header []byte
	off    int
}

func newHeaderReader(r io.Reader, headerSize int) (*headerReader, error) {
	// read at least headerSize bytes. If EOF, capture whatever was read.
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, errors.Wrap(err, "cannot read header")
	}
	return &headerReader{r: r, header: buf[:n]}, nil
}

func (p *headerReader) Read(b []byte) (int, error) {
	// read from header first
	if p.off < len(p.header) {
		n := copy(b, p.header[p.off:])
		p.off += n
		return n, nil
	}

	// then continue reading from the source
	return p.r.Read(b)
}

// PeekHeader returns the buffered header bytes without consuming them.
func (p *headerReader) PeekHeader() []byte {
	return p.header
}
