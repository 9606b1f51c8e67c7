// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	tarstream "github.com/hashicorp/go-tarstream"
	"github.com/hashicorp/go-tarstream/internal/decompress"
	"github.com/pkg/errors"
)

// ListRequest is the payload of a lambda invocation. Archive is base64
// encoded in the JSON document.
type ListRequest struct {
	Archive     []byte `json:"archive"`
	Compression string `json:"compression"`
	MaxEntries  int64  `json:"max_entries,omitempty"`
}

// ListResponse holds the entries of the archive and the telemetry of the parse.
type ListResponse struct {
	Entries   []tarstream.EntryMetadata `json:"entries"`
	Telemetry *tarstream.TelemetryData  `json:"telemetry"`
}

// NewListHandler returns a lambda handler listing the entries of the archive
// sent with the request.
func NewListHandler(logger *slog.Logger, opts ...tarstream.ConfigOption) func(context.Context, ListRequest) (ListResponse, error) {
	return func(ctx context.Context, req ListRequest) (ListResponse, error) {
		log := logger
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			log = logger.With("request_id", lc.AwsRequestID)
		}

		var res ListResponse
		cfgOpts := append([]tarstream.ConfigOption{
			tarstream.WithLogger(log),
			tarstream.WithTelemetryHook(func(ctx context.Context, td *tarstream.TelemetryData) {
				res.Telemetry = td
			}),
		}, opts...)
		if req.MaxEntries != 0 {
			cfgOpts = append(cfgOpts, tarstream.WithMaxEntries(req.MaxEntries))
		}

		e := &env{
			ctx:         ctx,
			cfg:         tarstream.NewConfig(cfgOpts...),
			logger:      log,
			compression: req.Compression,
			stdout:      io.Discard,
		}
		src, err := e.decompress(bytes.NewReader(req.Archive))
		if err != nil {
			return res, err
		}

		h := tarstream.HandlerFuncs{
			OnEntry: func(ctx context.Context, meta tarstream.EntryMetadata) (tarstream.Sink, error) {
				res.Entries = append(res.Entries, meta)
				return nil, nil
			},
		}
		if err := tarstream.Stream(ctx, src, h, e.cfg); err != nil {
			return res, errors.Wrap(err, "cannot list archive")
		}
		return res, nil
	}
}

// RunLambda starts the lambda runtime with the list handler.
func RunLambda() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	lambda.Start(NewListHandler(logger))
}

// decompress removes the compression layer configured for e.
func (e *env) decompress(archive io.Reader) (io.Reader, error) {
	switch e.compression {
	case "auto":
		r, codec, err := decompress.Detect(archive)
		if err != nil {
			return nil, err
		}
		if codec != "" {
			e.logger.Debug("detected compression", "codec", codec)
		}
		return r, nil
	case "none", "":
		return archive, nil
	default:
		return decompress.Open(archive, e.compression)
	}
}
