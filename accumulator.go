// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

// accumulator collects entry content and hands it out in chunks of exactly
// len(buf) bytes. The buffer is filled in place and flushed as soon as it is
// full, so buffered bytes never have to be moved.
//
// Invariant: 0 <= n < len(buf) between calls.
type accumulator struct {
	buf []byte
	n   int
}

func newAccumulator(chunkSize int) *accumulator {
	return &accumulator{buf: make([]byte, chunkSize)}
}

// write appends p and calls flush with every completed chunk. The slice given
// to flush is reused once flush returns.
func (a *accumulator) write(p []byte, flush func(chunk []byte) error) error {
	for len(p) > 0 {
		c := copy(a.buf[a.n:], p)
		a.n += c
		p = p[c:]
		if a.n == len(a.buf) {
			a.n = 0
			if err := flush(a.buf); err != nil {
				return err
			}
		}
	}
	return nil
}

// remainder returns the buffered bytes that did not fill a chunk.
func (a *accumulator) remainder() []byte {
	return a.buf[:a.n]
}

// len returns the number of buffered bytes.
func (a *accumulator) len() int {
	return a.n
}

// reset drops all buffered bytes.
func (a *accumulator) reset() {
	a.n = 0
}
