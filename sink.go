// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"
)

// Sink receives the content of a single archive entry. The parser calls Push
// zero or more times, in stream order, followed by exactly one call to End.
//
// Push may block to apply backpressure. Implementations must not retain chunk
// after Push returns. A sink whose consumer is no longer interested returns
// [ErrSinkClosed]; the parser then discards the remaining content of the entry
// without aborting the archive.
//
// End is called with nil once all declared bytes were pushed, or with the error
// that prevented the entry from completing.
type Sink interface {
	Push(ctx context.Context, chunk []byte) error
	End(err error) error
}

// PipeSink is a [Sink] connected to an [EntryReader]. Every Push blocks until
// the reader consumed the chunk.
type PipeSink struct {
	pr *io.PipeReader
	pw *io.PipeWriter
}

// EntryReader is the consumer side of a [PipeSink].
type EntryReader struct {
	pr *io.PipeReader
}

// NewPipeSink returns a connected sink and reader pair.
func NewPipeSink() (*PipeSink, *EntryReader) {
	pr, pw := io.Pipe()
	return &PipeSink{pr: pr, pw: pw}, &EntryReader{pr: pr}
}

// Push writes chunk to the pipe. A canceled ctx unblocks a pending push and
// closes the pipe with the context error. Once the pipe was closed that way,
// Push reports the context error even if the chunk was already consumed.
func (s *PipeSink) Push(ctx context.Context, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		s.pr.CloseWithError(ctx.Err())
	})

	_, err := s.pw.Write(chunk)
	if !stop() {
		// the reader was closed with the context error
		return ctx.Err()
	}
	if errors.Is(err, io.ErrClosedPipe) {
		return ErrSinkClosed
	}
	return err
}

// End closes the pipe. Readers observe io.EOF for a nil err and err otherwise.
func (s *PipeSink) End(err error) error {
	return s.pw.CloseWithError(err)
}

// Read reads entry content. It returns io.EOF once the entry is complete.
func (r *EntryReader) Read(p []byte) (int, error) {
	return r.pr.Read(p)
}

// Close stops the delivery of further content. Pending and later pushes
// return [ErrSinkClosed].
func (r *EntryReader) Close() error {
	return r.pr.CloseWithError(ErrSinkClosed)
}

// MemorySink is a [Sink] that buffers the complete entry content in memory.
// It never blocks.
type MemorySink struct {
	buf    bytes.Buffer
	w      io.Writer
	pushes int
	ended  bool
	err    error
}

// NewMemorySink returns a sink that keeps at most maxSize bytes. Pushing more
// fails with an error wrapping io.ErrShortWrite. (-1 to disable the limit)
func NewMemorySink(maxSize int64) *MemorySink {
	s := &MemorySink{}
	s.w = limitWriter(&s.buf, maxSize)
	return s
}

// Push appends chunk to the buffer.
func (s *MemorySink) Push(ctx context.Context, chunk []byte) error {
	if s.ended {
		return ErrSinkClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.pushes++
	if _, err := s.w.Write(chunk); err != nil {
		return errors.Wrap(err, "memory sink limit reached")
	}
	return nil
}

// End marks the entry as complete.
func (s *MemorySink) End(err error) error {
	s.ended = true
	s.err = err
	return nil
}

// Bytes returns the buffered content.
func (s *MemorySink) Bytes() []byte {
	return s.buf.Bytes()
}

// Pushes returns how often Push was called.
func (s *MemorySink) Pushes() int {
	return s.pushes
}

// Ended returns true once End was called.
func (s *MemorySink) Ended() bool {
	return s.ended
}

// Err returns the error End was called with.
func (s *MemorySink) Err() error {
	return s.err
}
