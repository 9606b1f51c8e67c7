// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package cwevents publishes parser telemetry to an Amazon CloudWatch Events
// (EventBridge) bus.
package cwevents

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents/types"
	tarstream "github.com/hashicorp/go-tarstream"
	"github.com/pkg/errors"
)

const (
	defaultSource     = "go-tarstream"
	defaultDetailType = "Archive Parsed"
	defaultTimeout    = 5 * time.Second
)

// PutEventsAPI is the part of the CloudWatch Events client used by the hook.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *cloudwatchevents.PutEventsInput, optFns ...func(*cloudwatchevents.Options)) (*cloudwatchevents.PutEventsOutput, error)
}

// Option adjusts the [Publisher].
type Option func(*Publisher)

// Publisher sends one event per parsed archive.
type Publisher struct {
	client     PutEventsAPI
	busName    string
	source     string
	detailType string
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// WithBusName sets the event bus. The default bus is used if empty.
func WithBusName(name string) Option {
	return func(p *Publisher) {
		p.busName = name
	}
}

// WithSource sets the source field of the events.
func WithSource(source string) Option {
	return func(p *Publisher) {
		p.source = source
	}
}

// WithDetailType sets the detail-type field of the events.
func WithDetailType(detailType string) Option {
	return func(p *Publisher) {
		p.detailType = detailType
	}
}

// WithTimeout limits the duration of a single PutEvents call.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.timeout = d
	}
}

// WithLogger sets the logger used to report failed submissions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher returns a publisher using client.
func NewPublisher(client PutEventsAPI, opts ...Option) *Publisher {
	p := &Publisher{
		client:     client,
		source:     defaultSource,
		detailType: defaultDetailType,
		timeout:    defaultTimeout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends td as a single event.
func (p *Publisher) Publish(ctx context.Context, td *tarstream.TelemetryData) error {
	detail, err := td.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "cannot encode telemetry data")
	}

	entry := types.PutEventsRequestEntry{
		Detail:     aws.String(string(detail)),
		DetailType: aws.String(p.detailType),
		Source:     aws.String(p.source),
		Time:       aws.Time(p.now()),
	}
	if p.busName != "" {
		entry.EventBusName = aws.String(p.busName)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.client.PutEvents(ctx, &cloudwatchevents.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return errors.Wrap(err, "cannot put telemetry event")
	}
	for _, res := range out.Entries {
		if res.ErrorCode != nil {
			return errors.Errorf("telemetry event rejected: %s: %s", aws.ToString(res.ErrorCode), aws.ToString(res.ErrorMessage))
		}
	}
	return nil
}

// Hook returns a [tarstream.TelemetryHook] publishing the telemetry data.
// Failures are logged and otherwise ignored.
func (p *Publisher) Hook() tarstream.TelemetryHook {
	return func(ctx context.Context, td *tarstream.TelemetryData) {
		if err := p.Publish(ctx, td); err != nil {
			p.logger.Warn("telemetry submission failed", "error", err)
		}
	}
}
