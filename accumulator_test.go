// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"bytes"
	"testing"
)

// TestAccumulatorWrite implements test cases
func TestAccumulatorWrite(t *testing.T) {
	tests := []struct {
		name       string
		chunkSize  int
		writes     []int
		wantChunks int
		wantRest   int
	}{
		{name: "below chunk size", chunkSize: 1024, writes: []int{512}, wantChunks: 0, wantRest: 512},
		{name: "exact chunk size", chunkSize: 1024, writes: []int{512, 512}, wantChunks: 1, wantRest: 0},
		{name: "chunk size not a multiple of the block size", chunkSize: 700, writes: []int{512, 512, 512, 464}, wantChunks: 2, wantRest: 600},
		{name: "single write larger than two chunks", chunkSize: 512, writes: []int{1300}, wantChunks: 2, wantRest: 276},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newAccumulator(tc.chunkSize)
			var input, output []byte
			chunks := 0
			flush := func(chunk []byte) error {
				if len(chunk) != tc.chunkSize {
					t.Fatalf("flushed %d bytes, want %d", len(chunk), tc.chunkSize)
				}
				output = append(output, chunk...)
				chunks++
				return nil
			}

			for i, n := range tc.writes {
				p := bytes.Repeat([]byte{byte(i + 1)}, n)
				input = append(input, p...)
				if err := a.write(p, flush); err != nil {
					t.Fatalf("write() error = %v", err)
				}
				if a.len() >= tc.chunkSize {
					t.Errorf("len() = %d, must stay below %d", a.len(), tc.chunkSize)
				}
			}

			if chunks != tc.wantChunks {
				t.Errorf("got %d chunks, want %d", chunks, tc.wantChunks)
			}
			if a.len() != tc.wantRest {
				t.Errorf("len() = %d, want %d", a.len(), tc.wantRest)
			}
			output = append(output, a.remainder()...)
			if !bytes.Equal(input, output) {
				t.Errorf("output differs from input")
			}

			a.reset()
			if a.len() != 0 || len(a.remainder()) != 0 {
				t.Errorf("reset() left %d bytes", a.len())
			}
		})
	}
}
