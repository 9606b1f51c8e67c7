// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// USTAR header field offsets
const (
	nameOffset = 0
	nameLength = 100
	sizeOffset = 124
	sizeLength = 12
)

// EntryMetadata describes a single archive entry.
type EntryMetadata struct {
	// Name is the entry name as stored in the header, without NUL padding.
	Name string `json:"name"`

	// Size is the declared content size in bytes.
	Size int64 `json:"size"`
}

// decodeHeader extracts the metadata of a header block. No other header field
// is interpreted and the checksum is not verified.
//
// If the size field cannot be decoded, the returned metadata has a size of 0
// and the error wraps [ErrMalformedHeader].
func decodeHeader(block []byte) (EntryMetadata, error) {
	meta := EntryMetadata{
		Name: parseString(block[nameOffset : nameOffset+nameLength]),
	}
	size, err := parseNumeric(block[sizeOffset : sizeOffset+sizeLength])
	if err != nil {
		return meta, errors.Wrapf(err, "entry %q", meta.Name)
	}
	meta.Size = size
	return meta, nil
}

// parseString returns b up to the first NUL byte.
func parseString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// parseNumeric decodes a numeric header field, either NUL/space padded octal
// or GNU base-256.
func parseNumeric(b []byte) (int64, error) {

	// base-256: the high bit of the first byte is set, the remaining bits are
	// a big-endian two's complement number
	if len(b) > 0 && b[0]&0x80 != 0 {
		if b[0]&0x40 != 0 {
			return 0, errors.Wrap(ErrMalformedHeader, "negative size")
		}
		var x uint64
		for i, c := range b {
			if i == 0 {
				c &= 0x7f
			}
			if x>>56 > 0 {
				return 0, errors.Wrap(ErrMalformedHeader, "size overflows int64")
			}
			x = x<<8 | uint64(c)
		}
		if x>>63 > 0 {
			return 0, errors.Wrap(ErrMalformedHeader, "size overflows int64")
		}
		return int64(x), nil
	}

	return parseOctal(b)
}

// parseOctal decodes an octal field padded with NULs or spaces on either side.
func parseOctal(b []byte) (int64, error) {
	s := strings.Trim(string(b), " \x00")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 8, 64)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrMalformedHeader, "invalid octal size %q", s)
	}
	return n, nil
}
