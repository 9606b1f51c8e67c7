// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// mode is the state of the block classifier
type mode int

const (
	awaitingHeader mode = iota
	readingContent
	done
)

// errArchiveEnded stops the slicer once the end-of-archive marker was seen
var errArchiveEnded = errors.New("archive ended")

// entryState tracks the entry whose content is currently read.
type entryState struct {
	meta     EntryMetadata
	readSize int64
	sink     Sink
	discard  bool
}

// Parser is an incremental USTAR parser. Bytes are fed with [Parser.Ingest]
// (or [Parser.Write]) in stream order and in any fragmentation; entries and
// their content are reported to a [Handler] as soon as the blocks arrive.
//
// A Parser handles exactly one archive stream and is not safe for concurrent
// use. [Parser.Close] must be called once no more input will arrive.
type Parser struct {
	cfg     *Config
	handler Handler

	slicer     slicer
	acc        *accumulator
	mode       mode
	active     *entryState
	zeroBlocks int
	entries    int64

	td     *TelemetryData
	start  time.Time
	closed bool
	err    error
}

// NewParser returns a parser reporting to h. A nil cfg selects the defaults.
// An invalid configuration returns an error wrapping [ErrConfig].
func NewParser(cfg *Config, h Handler) (*Parser, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, errors.Wrap(ErrConfig, "handler is nil")
	}
	return &Parser{
		cfg:     cfg,
		handler: h,
		acc:     newAccumulator(cfg.ChunkSize()),
		td:      &TelemetryData{},
		start:   time.Now(),
	}, nil
}

// Ingest feeds the next bytes of the archive stream. Complete blocks are
// processed immediately, a trailing partial block is kept until the following
// call. Bytes after the end-of-archive marker are ignored.
//
// Calling Ingest after the archive ended or after Close returns an error
// wrapping [ErrProtocol]. Any other error halts the parser and is returned by
// every later call.
func (p *Parser) Ingest(ctx context.Context, b []byte) error {
	if p.closed {
		return errors.Wrap(ErrProtocol, "ingest after close")
	}
	if p.err != nil {
		return p.err
	}
	if p.mode == done {
		return errors.Wrap(ErrProtocol, "ingest after end of archive")
	}
	if err := ctx.Err(); err != nil {
		return p.fail(err)
	}

	p.td.InputSize += int64(len(b))
	err := p.slicer.feed(b, func(block []byte) error {
		return p.classify(ctx, block)
	})
	if err == errArchiveEnded {
		return nil
	}
	if err != nil {
		return p.fail(err)
	}
	return nil
}

// Write implements [io.Writer] on top of [Parser.Ingest]. Zero bytes written
// after the end-of-archive marker are accepted as record padding.
func (p *Parser) Write(b []byte) (int, error) {
	if p.mode == done && !p.closed && p.err == nil && isZeroBlock(b) {
		p.td.InputSize += int64(len(b))
		return len(b), nil
	}
	if err := p.Ingest(context.Background(), b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Done returns true once the end-of-archive marker was seen.
func (p *Parser) Done() bool {
	return p.mode == done
}

// Close signals that no more input will arrive. If an entry is still missing
// content, its sink is ended with and Close returns an error wrapping
// [ErrTruncatedEntry]. The telemetry hook is called once.
func (p *Parser) Close(ctx context.Context) error {
	if p.closed {
		return p.err
	}
	p.closed = true
	defer p.submitTelemetry(ctx)

	if n := p.slicer.pending(); n > 0 {
		p.cfg.Logger().Debug("dropping incomplete trailing block", "bytes", n)
	}

	if e := p.active; e != nil {
		endErr := p.err
		if endErr == nil {
			endErr = p.fail(errors.Wrapf(ErrTruncatedEntry, "entry %q: got %d of %d bytes", e.meta.Name, e.readSize, e.meta.Size))
		}
		if e.sink != nil {
			_ = e.sink.End(endErr)
		}
		if n := p.acc.len(); n > 0 {
			p.cfg.Logger().Debug("dropping buffered content of unfinished entry", "name", e.meta.Name, "bytes", n)
		}
		p.active = nil
		p.acc.reset()
	}

	if p.mode != done && p.err == nil {
		p.cfg.Logger().Debug("input ended without end-of-archive marker")
	}
	return p.err
}

// classify dispatches a single block depending on the parser state.
func (p *Parser) classify(ctx context.Context, block []byte) error {
	switch p.mode {
	case readingContent:
		p.zeroBlocks = 0
		return p.appendContent(ctx, block)
	case awaitingHeader:
		if isZeroBlock(block) {
			return p.onZeroBlock(ctx)
		}
		p.zeroBlocks = 0
		return p.startEntry(ctx, block)
	default:
		return errArchiveEnded
	}
}

// startEntry decodes a header block and announces the entry to the handler.
func (p *Parser) startEntry(ctx context.Context, block []byte) error {
	meta, err := decodeHeader(block)
	if err != nil {
		if p.cfg.StrictHeaders() {
			return err
		}
		p.td.MalformedHeaders++
		p.cfg.Logger().Warn("malformed header, treating entry as empty", "name", meta.Name, "error", err)
	}

	p.entries++
	if err := p.cfg.CheckMaxEntries(p.entries); err != nil {
		return errors.Wrapf(err, "entry %q", meta.Name)
	}

	sink, err := p.handler.EntryStarted(ctx, meta)
	if err != nil {
		return errors.Wrapf(err, "entry %q", meta.Name)
	}
	p.td.Entries++
	p.cfg.Logger().Debug("entry started", "name", meta.Name, "size", meta.Size)

	p.active = &entryState{meta: meta, sink: sink, discard: sink == nil}
	p.mode = readingContent

	// the next block already belongs to the following entry
	if meta.Size == 0 {
		return p.finishEntry(ctx)
	}
	return nil
}

// appendContent adds the content part of block to the active entry. Bytes
// beyond the declared size are padding and dropped unseen.
func (p *Parser) appendContent(ctx context.Context, block []byte) error {
	e := p.active
	n := int64(len(block))
	if rest := e.meta.Size - e.readSize; rest < n {
		n = rest
	}

	if err := p.acc.write(block[:n], func(chunk []byte) error {
		return p.push(ctx, chunk)
	}); err != nil {
		return err
	}
	e.readSize += n

	if e.readSize >= e.meta.Size {
		return p.finishEntry(ctx)
	}
	return nil
}

// push delivers chunk to the active sink unless the entry is discarded.
func (p *Parser) push(ctx context.Context, chunk []byte) error {
	e := p.active
	if e.discard {
		p.td.DiscardedSize += int64(len(chunk))
		return nil
	}

	err := e.sink.Push(ctx, chunk)
	switch {
	case err == nil:
		p.td.ContentSize += int64(len(chunk))
		return nil
	case errors.Is(err, ErrSinkClosed):
		p.cfg.Logger().Debug("sink closed, discarding remaining content", "name", e.meta.Name)
		e.discard = true
		p.td.DiscardedSize += int64(len(chunk))
		return nil
	default:
		return errors.Wrapf(err, "push content of entry %q", e.meta.Name)
	}
}

// finishEntry flushes the remaining content and ends the active sink.
func (p *Parser) finishEntry(ctx context.Context) error {
	e := p.active
	if rest := p.acc.remainder(); len(rest) > 0 {
		if err := p.push(ctx, rest); err != nil {
			return err
		}
	}
	p.acc.reset()

	// the sink is ended exactly once, even if End fails
	p.active = nil
	p.mode = awaitingHeader
	p.zeroBlocks = 0

	if e.sink != nil {
		if err := e.sink.End(nil); err != nil && !errors.Is(err, ErrSinkClosed) {
			return errors.Wrapf(err, "end entry %q", e.meta.Name)
		}
	}
	p.cfg.Logger().Debug("entry finished", "name", e.meta.Name, "size", e.meta.Size, "discarded", e.discard)
	return nil
}

// onZeroBlock counts zero blocks in place of a header. Two in a row end the archive.
func (p *Parser) onZeroBlock(ctx context.Context) error {
	p.zeroBlocks++
	if p.zeroBlocks < 2 {
		return nil
	}

	p.mode = done
	p.td.ArchiveEnded = true
	p.cfg.Logger().Debug("end of archive", "entries", p.td.Entries)
	if err := p.handler.ArchiveEnded(ctx); err != nil {
		return errors.Wrap(err, "archive end")
	}
	return errArchiveEnded
}

// fail records the first fatal error.
func (p *Parser) fail(err error) error {
	if p.err == nil {
		p.err = err
		p.td.LastError = err
		p.cfg.Logger().Error("parsing failed", "error", err)
	}
	return p.err
}

// submitTelemetry passes the collected telemetry data to the hook.
func (p *Parser) submitTelemetry(ctx context.Context) {
	p.td.ParseDuration = time.Since(p.start)
	p.cfg.TelemetryHook()(ctx, p.td)
}
