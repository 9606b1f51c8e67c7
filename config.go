// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all configuration options for the parsing process.
// The configuration options can be adjusted using the option pattern style.
type Config struct {
	// chunkSize is the size of the chunks pushed to an entry sink.
	// Must not be smaller than the archive block size.
	chunkSize int

	// logger stream for parsing
	logger logger

	// maxEntries is the maximum of entries (headers) in an archive.
	// Set value to -1 to disable the check.
	maxEntries int64

	// maxInputSize is the maximum size of the input read by [Stream].
	// Set value to -1 to disable the check.
	maxInputSize int64

	// readBufferSize is the size of the buffer [Stream] reads into
	readBufferSize int

	// strictHeaders turns a malformed size field into a fatal error instead
	// of treating the entry as empty
	strictHeaders bool

	// telemetryHook is a function to consume telemetry data after the parser is closed
	// Important: do not adjust this value after parsing started
	telemetryHook TelemetryHook
}

const (
	defaultChunkSize      = 512 * 1024    // 512 KiB
	defaultMaxEntries     = 100000        // 100k entries
	defaultMaxInputSize   = 1 << (10 * 3) // 1 Gb
	defaultReadBufferSize = 32 * 1024     // 32 KiB
	defaultStrictHeaders  = false         // treat malformed size as 0
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		chunkSize:      defaultChunkSize,
		logger:         defaultLogger,
		maxEntries:     defaultMaxEntries,
		maxInputSize:   defaultMaxInputSize,
		readBufferSize: defaultReadBufferSize,
		strictHeaders:  defaultStrictHeaders,
		telemetryHook:  defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// Validate returns an error wrapping [ErrConfig] if the configuration cannot
// be used to parse an archive.
func (c *Config) Validate() error {
	if c.chunkSize < blockSize {
		return errors.Wrapf(ErrConfig, "chunk size %d is smaller than block size %d", c.chunkSize, blockSize)
	}
	if c.readBufferSize <= 0 {
		return errors.Wrapf(ErrConfig, "read buffer size %d must be positive", c.readBufferSize)
	}
	return nil
}

// CheckMaxEntries checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxEntriesExceeded] error is returned.
func (c *Config) CheckMaxEntries(counter int64) error {

	// check if disabled
	if c.MaxEntries() == -1 {
		return nil
	}

	// check value
	if counter > c.MaxEntries() {
		return ErrMaxEntriesExceeded
	}
	return nil
}

// ChunkSize returns the size of the chunks pushed to an entry sink.
func (c *Config) ChunkSize() int {
	return c.chunkSize
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxEntries returns the maximum of entries in an archive.
func (c *Config) MaxEntries() int64 {
	return c.maxEntries
}

// MaxInputSize returns the maximum size of the input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// ReadBufferSize returns the size of the reads performed by [Stream].
func (c *Config) ReadBufferSize() int {
	return c.readBufferSize
}

// StrictHeaders returns true if a malformed header aborts parsing.
func (c *Config) StrictHeaders() bool {
	return c.strictHeaders
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

// WithChunkSize options pattern function to set the size of the chunks pushed
// to an entry sink. Values below 512 are rejected by [Config.Validate].
func WithChunkSize(size int) ConfigOption {
	return func(c *Config) {
		c.chunkSize = size
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxEntries options pattern function to set the maximum number of entries
// in an archive. (-1 to disable check)
func WithMaxEntries(maxEntries int64) ConfigOption {
	return func(c *Config) {
		c.maxEntries = maxEntries
	}
}

// WithMaxInputSize options pattern function to set MaxInputSize for the input stream. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithReadBufferSize options pattern function to set the size of the reads
// performed by [Stream].
func WithReadBufferSize(size int) ConfigOption {
	return func(c *Config) {
		c.readBufferSize = size
	}
}

// WithStrictHeaders options pattern function to abort parsing on a header with a
// malformed size field. By default such an entry is treated as empty.
func WithStrictHeaders(strict bool) ConfigOption {
	return func(c *Config) {
		c.strictHeaders = strict
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called
// once the parser is closed.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
