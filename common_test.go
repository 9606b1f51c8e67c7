// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream_test

import (
	"archive/tar"
	"bytes"
	"context"
	"testing"

	tarstream "github.com/hashicorp/go-tarstream"
)

// archiveContent describes an entry of a test archive
type archiveContent struct {
	Name     string
	Content  []byte
	Filetype byte
}

// packTar creates a tar archive with the given entries
func packTar(t *testing.T, content []archiveContent) []byte {
	t.Helper()

	// create tar writer
	writeBuffer := bytes.NewBuffer([]byte{})
	tw := tar.NewWriter(writeBuffer)

	// write content
	for _, c := range content {
		hdr := &tar.Header{
			Name:     c.Name,
			Mode:     0640,
			Size:     int64(len(c.Content)),
			Typeflag: c.Filetype,
			Format:   tar.FormatUSTAR,
		}
		if c.Filetype == 0 {
			hdr.Typeflag = tar.TypeReg
		}

		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("error writing tar header: %v", err)
		}
		if _, err := tw.Write(c.Content); err != nil {
			t.Fatalf("error writing tar data: %v", err)
		}
	}

	// close tar writer
	if err := tw.Close(); err != nil {
		t.Fatalf("error closing tar writer: %v", err)
	}

	return writeBuffer.Bytes()
}

// pattern returns n bytes of a repeating, non-zero pattern
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i%251) + 1
	}
	return b
}

// chunkSink records every pushed chunk
type chunkSink struct {
	chunks [][]byte
	ends   int
	endErr error
}

func (s *chunkSink) Push(ctx context.Context, chunk []byte) error {
	s.chunks = append(s.chunks, append([]byte(nil), chunk...))
	return nil
}

func (s *chunkSink) End(err error) error {
	s.ends++
	s.endErr = err
	return nil
}

func (s *chunkSink) content() []byte {
	return bytes.Join(s.chunks, nil)
}

// recordedEntry is an entry seen by the recorder
type recordedEntry struct {
	meta tarstream.EntryMetadata
	sink *chunkSink
}

// recorder is a handler that records all events
type recorder struct {
	entries []*recordedEntry
	ended   int

	// endedAfter is the number of entries seen when ArchiveEnded was called
	endedAfter int
}

func (r *recorder) EntryStarted(ctx context.Context, meta tarstream.EntryMetadata) (tarstream.Sink, error) {
	s := &chunkSink{}
	r.entries = append(r.entries, &recordedEntry{meta: meta, sink: s})
	return s, nil
}

func (r *recorder) ArchiveEnded(ctx context.Context) error {
	r.ended++
	r.endedAfter = len(r.entries)
	return nil
}

// feedFragments ingests data in pieces whose sizes are given by size(i)
func feedFragments(t *testing.T, p *tarstream.Parser, data []byte, size func(i int) int) {
	t.Helper()
	ctx := context.Background()
	for i, off := 0, 0; off < len(data); i++ {
		end := off + size(i)
		if end > len(data) {
			end = len(data)
		}
		if err := p.Ingest(ctx, data[off:end]); err != nil {
			t.Fatalf("ingest at offset %d failed: %v", off, err)
		}
		off = end
	}
}

// parseAll parses data with the given chunk size and fragmentation
func parseAll(t *testing.T, data []byte, chunkSize int, size func(i int) int) *recorder {
	t.Helper()
	rec := &recorder{}
	p, err := tarstream.NewParser(tarstream.NewConfig(tarstream.WithChunkSize(chunkSize)), rec)
	if err != nil {
		t.Fatalf("cannot create parser: %v", err)
	}
	feedFragments(t, p, data, size)
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	return rec
}

// whole feeds everything at once
func whole(int) int {
	return 1 << 30
}
