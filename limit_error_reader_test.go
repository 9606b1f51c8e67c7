// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// TestLimitErrorReader_Read tests the implementation of limitErrorReader.Read
func TestLimitErrorReader_Read(t *testing.T) {
	tests := []struct {
		name       string
		limit      int64
		input      string
		bufferSize int
		expectN    int64
	}{
		{
			name:       "Under limit",
			limit:      10,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
		{
			name:       "At limit",
			limit:      5,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
		{
			name:       "Over limit",
			limit:      4,
			input:      "12345",
			bufferSize: 5,
			expectN:    4,
		},
		{
			name:       "Under limit with buffer",
			limit:      10,
			input:      "12345",
			bufferSize: 2,
			expectN:    2,
		},
		{
			name:       "Unlimited",
			limit:      -1,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := strings.NewReader(test.input)
			l := newLimitErrorReader(r, test.limit)
			buf := make([]byte, test.bufferSize)
			n, err := l.Read(buf)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if int64(n) != test.expectN {
				t.Errorf("Read() = %v, want %v", n, test.expectN)
			}
			if l.ReadBytes() != test.expectN {
				t.Errorf("ReadBytes() = %v, want %v", l.ReadBytes(), test.expectN)
			}
		})
	}
}

// TestLimitErrorReader_Exceeded checks that reading beyond the limit fails
func TestLimitErrorReader_Exceeded(t *testing.T) {
	l := newLimitErrorReader(strings.NewReader("12345"), 4)
	buf := make([]byte, 5)
	if _, err := l.Read(buf); err != nil {
		t.Fatalf("first Read() error = %v", err)
	}
	_, err := l.Read(buf)
	if !errors.Is(err, ErrMaxInputSizeExceeded) {
		t.Errorf("second Read() error = %v, want %v", err, ErrMaxInputSizeExceeded)
	}
}
