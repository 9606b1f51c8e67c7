// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Entry is an archive entry handed out by [Reader.Next]. Reading it yields the
// entry content; the read fails with an error wrapping [ErrTruncatedEntry] if
// the archive ends early.
type Entry struct {
	EntryMetadata
	*EntryReader
}

// Reader provides sequential access to the entries of an archive stream, in the
// manner of archive/tar.Reader, while the archive is parsed in the background.
type Reader struct {
	entries chan *Entry
	cur     *Entry
	cancel  context.CancelFunc
	g       *errgroup.Group
}

// NewReader starts parsing src. The returned reader must be closed.
func NewReader(ctx context.Context, src io.Reader, cfg *Config) (*Reader, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	r := &Reader{
		entries: make(chan *Entry),
		cancel:  cancel,
		g:       g,
	}

	h := HandlerFuncs{
		OnEntry: func(ctx context.Context, meta EntryMetadata) (Sink, error) {
			sink, er := NewPipeSink()
			select {
			case r.entries <- &Entry{EntryMetadata: meta, EntryReader: er}:
				return sink, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}

	g.Go(func() error {
		defer close(r.entries)
		return Stream(ctx, src, h, cfg)
	})
	return r, nil
}

// Next closes the current entry and advances to the next one. It returns
// io.EOF once the archive is exhausted, or the error that stopped parsing.
func (r *Reader) Next() (*Entry, error) {
	if r.cur != nil {
		r.cur.Close()
		r.cur = nil
	}

	e, ok := <-r.entries
	if !ok {
		if err := r.g.Wait(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	r.cur = e
	return e, nil
}

// Close stops parsing and waits for the background parser to return. It
// returns the parse error, if any, unless the reader was closed before the
// archive was fully read.
func (r *Reader) Close() error {
	if r.cur != nil {
		r.cur.Close()
		r.cur = nil
	}
	r.cancel()

	// release a handler blocked on the hand-over
	for e := range r.entries {
		e.Close()
	}

	err := r.g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
