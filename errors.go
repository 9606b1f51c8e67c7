// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import "github.com/pkg/errors"

var (
	// ErrConfig is returned when a [Config] is invalid, e.g. the chunk size is
	// smaller than the archive block size.
	ErrConfig = errors.New("invalid configuration")

	// ErrProtocol is returned when the parser is fed after the archive ended or
	// after it was closed.
	ErrProtocol = errors.New("protocol error")

	// ErrMalformedHeader indicates a header block whose size field cannot be
	// decoded.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrTruncatedEntry is returned when the input ends before an entry
	// received its declared number of bytes.
	ErrTruncatedEntry = errors.New("truncated entry")

	// ErrSinkClosed is returned by a [Sink] whose consumer stopped reading.
	ErrSinkClosed = errors.New("sink closed")

	// ErrMaxEntriesExceeded indicates that the archive holds more entries than allowed.
	ErrMaxEntriesExceeded = errors.New("maximum entries exceeded")

	// ErrMaxInputSizeExceeded indicates that the input exceeded the configured maximum.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")
)
