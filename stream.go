// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Stream reads the archive from src and reports its entries to h. It returns
// once the end-of-archive marker was processed, src is exhausted or an error
// occurred. Input beyond the end-of-archive marker is not read.
//
// The input is limited to [Config.MaxInputSize] bytes and read in pieces of
// [Config.ReadBufferSize] bytes. The context is checked between reads.
func Stream(ctx context.Context, src io.Reader, h Handler, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}
	p, err := NewParser(cfg, h)
	if err != nil {
		return err
	}

	limitedReader := newLimitErrorReader(src, cfg.MaxInputSize())
	buf := make([]byte, cfg.ReadBufferSize())

	for !p.Done() {

		// check if context is canceled
		if err := ctx.Err(); err != nil {
			p.fail(errors.Wrap(err, "context error"))
			break
		}

		n, rerr := limitedReader.Read(buf)
		if n > 0 {
			if err := p.Ingest(ctx, buf[:n]); err != nil {
				break
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			p.fail(errors.Wrapf(rerr, "read input after %d bytes", limitedReader.ReadBytes()))
			break
		}
	}

	return p.Close(ctx)
}
