// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

// blockSize is the size of a single archive block
const blockSize = 512

// slicer cuts an arbitrary byte stream into blocks. It retains at most one
// partial block between calls.
type slicer struct {
	carry [blockSize]byte
	n     int
}

// feed calls fn for every complete block found in the carried bytes followed
// by p, in stream order. Blocks handed to fn are only valid during the call.
// Feeding stops at the first error returned by fn.
func (s *slicer) feed(p []byte, fn func(block []byte) error) error {

	// complete the carried partial block first
	if s.n > 0 {
		c := copy(s.carry[s.n:], p)
		s.n += c
		p = p[c:]
		if s.n < blockSize {
			return nil
		}
		s.n = 0
		if err := fn(s.carry[:]); err != nil {
			return err
		}
	}

	for len(p) >= blockSize {
		if err := fn(p[:blockSize]); err != nil {
			return err
		}
		p = p[blockSize:]
	}

	s.n = copy(s.carry[:], p)
	return nil
}

// pending returns the number of carried bytes that do not form a block yet.
func (s *slicer) pending() int {
	return s.n
}

// isZeroBlock reports whether every byte of block is zero.
func isZeroBlock(block []byte) bool {
	for _, b := range block {
		if b != 0 {
			return false
		}
	}
	return true
}
