// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	tarstream "github.com/hashicorp/go-tarstream"
	"github.com/hashicorp/go-tarstream/cwevents"
	"github.com/hashicorp/go-tarstream/internal/decompress"
	"github.com/pkg/errors"
)

// CLI are the cli parameters for the tarstream binary
type CLI struct {
	ChunkSize     int              `optional:"" default:"524288" help:"Size of the content chunks (in bytes, minimum 512)."`
	CloudwatchBus string           `optional:"" help:"Publish telemetry to this CloudWatch Events bus."`
	Compression   string           `short:"c" optional:"" default:"auto" help:"Compression of the input (auto, none, ${codecs})."`
	MaxEntries    int64            `optional:"" default:"100000" help:"Maximum entries that are parsed before stop. (disable check: -1)"`
	MaxInputSize  int64            `optional:"" default:"1073741824" help:"Maximum input size that is allowed (in bytes). (disable check: -1)"`
	MaxParseTime  int64            `optional:"" default:"60" help:"Maximum time that parsing should take (in seconds). (disable check: -1)"`
	Metrics       bool             `short:"M" optional:"" default:"false" help:"Print metrics to log after parsing."`
	StrictHeaders bool             `optional:"" help:"Abort on headers with a malformed size field."`
	Verbose       bool             `short:"v" optional:"" help:"Verbose logging."`
	Version       kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`

	List ListCmd `cmd:"" help:"List the entries of an archive."`
	Cat  CatCmd  `cmd:"" help:"Write the content of an entry to stdout."`
}

// ListCmd prints one line per entry.
type ListCmd struct {
	Archive string `arg:"" name:"archive" help:"Path to archive. (\"-\" for STDIN)"`
	Long    bool   `short:"l" help:"Print the entry size."`
}

// CatCmd prints the content of the first entry with a matching name.
type CatCmd struct {
	Archive string `arg:"" name:"archive" help:"Path to archive. (\"-\" for STDIN)"`
	Name    string `arg:"" name:"name" help:"Name of the entry."`
}

// env is passed to the command implementations
type env struct {
	ctx         context.Context
	cfg         *tarstream.Config
	logger      *slog.Logger
	compression string
	stdout      io.Writer
}

// Run the entrypoint into go-tarstream as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Description("A streaming tar archive inspector"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
			"codecs":  fmt.Sprint(decompress.Codecs()),
		},
	)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Metrics {
		logLevel = slog.LevelInfo
	}
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	ctx := context.Background()
	if cli.MaxParseTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second*time.Duration(cli.MaxParseTime))
		defer cancel()
	}

	// setup telemetry hooks
	hooks := []tarstream.TelemetryHook{}
	if cli.Metrics {
		hooks = append(hooks, func(ctx context.Context, td *tarstream.TelemetryData) {
			logger.Info("parsing finished", "metrics", td)
		})
	}
	if cli.CloudwatchBus != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("loading aws configuration failed", "err", err)
			os.Exit(-1)
		}
		publisher := cwevents.NewPublisher(
			cloudwatchevents.NewFromConfig(awsCfg),
			cwevents.WithBusName(cli.CloudwatchBus),
			cwevents.WithLogger(logger),
		)
		hooks = append(hooks, publisher.Hook())
	}

	// process cli params
	cfg := tarstream.NewConfig(
		tarstream.WithChunkSize(cli.ChunkSize),
		tarstream.WithLogger(logger),
		tarstream.WithMaxEntries(cli.MaxEntries),
		tarstream.WithMaxInputSize(cli.MaxInputSize),
		tarstream.WithStrictHeaders(cli.StrictHeaders),
		tarstream.WithTelemetryHook(func(ctx context.Context, td *tarstream.TelemetryData) {
			for _, hook := range hooks {
				hook(ctx, td)
			}
		}),
	)

	e := &env{
		ctx:         ctx,
		cfg:         cfg,
		logger:      logger,
		compression: cli.Compression,
		stdout:      os.Stdout,
	}
	if err := kctx.Run(e); err != nil {
		logger.Error("error during parsing", "err", err)
		os.Exit(-1)
	}
}

// Run lists the archive entries.
func (l *ListCmd) Run(e *env) error {
	src, closeFn, err := e.open(l.Archive)
	if err != nil {
		return err
	}
	defer closeFn()

	h := tarstream.HandlerFuncs{
		OnEntry: func(ctx context.Context, meta tarstream.EntryMetadata) (tarstream.Sink, error) {
			if l.Long {
				_, err := fmt.Fprintf(e.stdout, "%12d %s\n", meta.Size, meta.Name)
				return nil, err
			}
			_, err := fmt.Fprintln(e.stdout, meta.Name)
			return nil, err
		},
	}
	return tarstream.Stream(e.ctx, src, h, e.cfg)
}

// Run copies the content of the requested entry.
func (c *CatCmd) Run(e *env) error {
	src, closeFn, err := e.open(c.Archive)
	if err != nil {
		return err
	}
	defer closeFn()

	r, err := tarstream.NewReader(e.ctx, src, e.cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		entry, err := r.Next()
		if err == io.EOF {
			return errors.Errorf("entry %q not found", c.Name)
		}
		if err != nil {
			return err
		}
		if entry.Name != c.Name {
			continue
		}
		if _, err := io.Copy(e.stdout, entry); err != nil {
			return errors.Wrapf(err, "cannot copy entry %q", c.Name)
		}
		return nil
	}
}

// open opens the archive and removes the compression layer.
func (e *env) open(path string) (io.Reader, func(), error) {
	var archive io.Reader
	closeFn := func() {}
	if path == "-" {
		archive = bufio.NewReader(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening archive failed")
		}
		archive = f
		closeFn = func() { f.Close() }
	}

	r, err := e.decompress(archive)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return r, closeFn, nil
}
