// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package decompress removes a compression layer from an archive stream
// before the stream reaches the tar parser.
package decompress

import (
	"bytes"
	"io"
	"sort"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// ErrUnknownCodec is returned by [Open] for an unknown codec name.
var ErrUnknownCodec = errors.New("unknown compression codec")

// Func returns a reader that decompresses src.
type Func func(src io.Reader) (io.Reader, error)

// codec describes a compression format by its file extension and magic bytes.
type codec struct {
	Decompress Func
	MagicBytes [][]byte
}

// codecs is the collection of supported compression formats, keyed by file extension
var codecs = map[string]codec{
	"br": {
		// brotli streams have no magic bytes, they can only be selected by name
		Decompress: func(src io.Reader) (io.Reader, error) {
			return brotli.NewReader(src), nil
		},
	},
	"bz2": {
		// reference: https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
		Decompress: func(src io.Reader) (io.Reader, error) {
			return bzip2.NewReader(src, nil)
		},
		MagicBytes: [][]byte{
			[]byte("BZh1"), []byte("BZh2"), []byte("BZh3"),
			[]byte("BZh4"), []byte("BZh5"), []byte("BZh6"),
			[]byte("BZh7"), []byte("BZh8"), []byte("BZh9"),
		},
	},
	"gz": {
		Decompress: func(src io.Reader) (io.Reader, error) {
			return gzip.NewReader(src)
		},
		MagicBytes: [][]byte{{0x1f, 0x8b}},
	},
	"lz4": {
		// reference https://android.googlesource.com/platform/external/lz4/+/HEAD/doc/lz4_Frame_format.md
		Decompress: func(src io.Reader) (io.Reader, error) {
			return lz4.NewReader(src), nil
		},
		MagicBytes: [][]byte{{0x04, 0x22, 0x4D, 0x18}},
	},
	"sz": {
		Decompress: func(src io.Reader) (io.Reader, error) {
			return snappy.NewReader(src), nil
		},
		MagicBytes: [][]byte{append([]byte{0xff, 0x06, 0x00, 0x00}, []byte("sNaPpY")...)},
	},
	"xz": {
		// reference https://tukaani.org/xz/xz-file-format-1.0.4.txt
		Decompress: func(src io.Reader) (io.Reader, error) {
			return xz.NewReader(src)
		},
		MagicBytes: [][]byte{{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
	},
	"zst": {
		// reference: https://www.rfc-editor.org/rfc/rfc8878.html
		Decompress: func(src io.Reader) (io.Reader, error) {
			return zstd.NewReader(src)
		},
		MagicBytes: [][]byte{{0x28, 0xb5, 0x2f, 0xfd}},
	},
	"zz": {
		// reference https://www.ietf.org/rfc/rfc1950.txt
		Decompress: func(src io.Reader) (io.Reader, error) {
			return zlib.NewReader(src)
		},
		MagicBytes: [][]byte{
			{0x78, 0x01}, {0x78, 0x5e}, {0x78, 0x9c}, {0x78, 0xda},
			{0x78, 0x20}, {0x78, 0x7d}, {0x78, 0xbb}, {0x78, 0xf9},
		},
	},
}

// offsetTar is the offset of the USTAR magic in an uncompressed archive
const offsetTar = 257

// magicBytesTar identify an uncompressed archive, which is passed through
var magicBytesTar = [][]byte{
	[]byte("ustar\x00"),
	[]byte("ustar  \x00"),
}

// maxHeaderLength is the number of bytes needed to match all magic bytes
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	for _, mb := range magicBytesTar {
		if offsetTar+len(mb) > maxHeaderLength {
			maxHeaderLength = offsetTar + len(mb)
		}
	}
	for _, c := range codecs {
		for _, mb := range c.MagicBytes {
			if len(mb) > maxHeaderLength {
				maxHeaderLength = len(mb)
			}
		}
	}
}

// Codecs returns the names of all supported codecs in sorted order.
func Codecs() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open wraps src with the decompressor of the named codec.
func Open(src io.Reader, name string) (io.Reader, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCodec, "%q", name)
	}
	r, err := c.Decompress(src)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot start %s decompression", name)
	}
	return r, nil
}

// Detect peeks at the first bytes of src and wraps it with the decompressor of
// the matching codec. The returned name is empty if no codec matched, in which
// case the returned reader yields src unchanged.
func Detect(src io.Reader) (io.Reader, string, error) {
	hr, err := newHeaderReader(src, maxHeaderLength)
	if err != nil {
		return nil, "", err
	}

	header := hr.PeekHeader()
	if len(header) > offsetTar && matchesMagicBytes(header[offsetTar:], magicBytesTar) {
		return hr, "", nil
	}
	for name, c := range codecs {
		if !matchesMagicBytes(header, c.MagicBytes) {
			continue
		}
		r, err := Open(hr, name)
		if err != nil {
			return nil, "", err
		}
		return r, name, nil
	}
	return hr, "", nil
}

// matchesMagicBytes checks if data starts with one of the magic byte sequences.
func matchesMagicBytes(data []byte, magicBytes [][]byte) bool {
	for _, mb := range magicBytes {
		if len(mb) <= len(data) && bytes.Equal(mb, data[:len(mb)]) {
			return true
		}
	}
	return false
}
