// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package tarstream parses USTAR archives incrementally, as the bytes arrive,
// without holding the archive in memory.
//
// A [Parser] accepts byte buffers of any length with [Parser.Ingest] and
// reports every entry to a [Handler] as soon as its header block is complete.
// The content of an entry is delivered in chunks of [Config.ChunkSize] bytes to
// the [Sink] returned by the handler. Only the name and the size of an entry
// are decoded; checksums and all other header fields are ignored.
//
// [Stream] drives a parser from an [io.Reader], and [Reader] offers the
// entries one at a time in the style of archive/tar.
//
// Configuration is done using the [Config], adjusted with [ConfigOption]
// values. Telemetry data is collected per parser and passed to the
// [TelemetryHook] once the parser is closed.
package tarstream
