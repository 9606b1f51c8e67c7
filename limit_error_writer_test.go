// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"bytes"
	"io"
	"testing"
)

// TestLimitErrorWriter tests the limitErrorWriter
func TestLimitErrorWriter(t *testing.T) {
	var buf bytes.Buffer
	l := limitWriter(&buf, 5)

	n, err := l.Write([]byte("hel"))
	if n != 3 || err != nil {
		t.Errorf("Expected to write 3 bytes, but wrote %d with error %v", n, err)
	}

	n, err = l.Write([]byte("lo world"))
	if n != 2 || err != io.ErrShortWrite {
		t.Errorf("Expected to write 2 bytes and get ErrShortWrite, but wrote %d with error %v", n, err)
	}

	n, err = l.Write([]byte("!"))
	if n != 0 || err != io.ErrShortWrite {
		t.Errorf("Expected to write 0 bytes and get ErrShortWrite, but wrote %d with error %v", n, err)
	}

	if buf.String() != "hello" {
		t.Errorf("Expected buffer to contain 'hello', but it contains '%s'", buf.String())
	}
}

// TestLimitWriterDisabled checks that a negative limit returns the writer itself
func TestLimitWriterDisabled(t *testing.T) {
	var buf bytes.Buffer
	if w := limitWriter(&buf, -1); w != io.Writer(&buf) {
		t.Errorf("Expected the unwrapped writer for a negative limit")
	}
}
