// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds all telemetry data of a parsed archive stream.
type TelemetryData struct {
	// ArchiveEnded is true if the end-of-archive marker was seen
	ArchiveEnded bool `json:"archive_ended"`

	// ContentSize is the number of content bytes delivered to sinks
	ContentSize int64 `json:"content_size"`

	// DiscardedSize is the number of content bytes dropped because a sink was closed early
	DiscardedSize int64 `json:"discarded_size"`

	// Entries is the number of entries found in the archive
	Entries int64 `json:"entries"`

	// InputSize is the number of bytes fed into the parser
	InputSize int64 `json:"input_size"`

	// LastError is the error that halted the parser, if any
	LastError error `json:"last_error"`

	// MalformedHeaders is the number of headers with an undecodable size field
	MalformedHeaders int64 `json:"malformed_headers"`

	// ParseDuration is the time between creating and closing the parser
	ParseDuration time.Duration `json:"parse_duration"`
}

// String returns a string representation of [TelemetryData].
func (td TelemetryData) String() string {
	b, _ := json.Marshal(td)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (td TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if td.LastError != nil {
		lastError = td.LastError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastError string `json:"last_error"`
		*Alias
	}{
		LastError: lastError,
		Alias:     (*Alias)(&td),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after a parser has been closed which can be used to submit the [TelemetryData]
// to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// Equals returns true if the given [TelemetryData] is equal to the receiver.
// The duration and the last error are not compared.
func (td *TelemetryData) Equals(other *TelemetryData) bool {
	if td == nil && other == nil {
		return true
	}
	if td == nil || other == nil {
		return false
	}
	return td.ArchiveEnded == other.ArchiveEnded &&
		td.ContentSize == other.ContentSize &&
		td.DiscardedSize == other.DiscardedSize &&
		td.Entries == other.Entries &&
		td.InputSize == other.InputSize &&
		td.MalformedHeaders == other.MalformedHeaders
}
