// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cwevents

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents/types"
	tarstream "github.com/hashicorp/go-tarstream"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records the submitted events
type fakeClient struct {
	inputs   []*cloudwatchevents.PutEventsInput
	deadline bool
	err      error
	output   *cloudwatchevents.PutEventsOutput
}

func (f *fakeClient) PutEvents(ctx context.Context, params *cloudwatchevents.PutEventsInput, optFns ...func(*cloudwatchevents.Options)) (*cloudwatchevents.PutEventsOutput, error) {
	f.inputs = append(f.inputs, params)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return &cloudwatchevents.PutEventsOutput{
		Entries: []types.PutEventsResultEntry{{EventId: aws.String("1")}},
	}, nil
}

func TestPublish(t *testing.T) {
	client := &fakeClient{}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := NewPublisher(client,
		WithBusName("archives"),
		WithSource("test"),
		WithDetailType("Test Event"),
	)
	p.now = func() time.Time { return now }

	td := &tarstream.TelemetryData{ArchiveEnded: true, Entries: 3, InputSize: 4096}
	require.NoError(t, p.Publish(context.Background(), td))

	require.Len(t, client.inputs, 1)
	require.Len(t, client.inputs[0].Entries, 1)
	assert.True(t, client.deadline)

	entry := client.inputs[0].Entries[0]
	assert.Equal(t, "archives", aws.ToString(entry.EventBusName))
	assert.Equal(t, "test", aws.ToString(entry.Source))
	assert.Equal(t, "Test Event", aws.ToString(entry.DetailType))
	assert.Equal(t, now, aws.ToTime(entry.Time))

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, true, detail["archive_ended"])
	assert.Equal(t, float64(3), detail["entries"])
	assert.Equal(t, float64(4096), detail["input_size"])
	assert.Equal(t, "", detail["last_error"])
}

func TestPublishDefaults(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client)

	require.NoError(t, p.Publish(context.Background(), &tarstream.TelemetryData{}))
	entry := client.inputs[0].Entries[0]
	assert.Nil(t, entry.EventBusName)
	assert.Equal(t, defaultSource, aws.ToString(entry.Source))
	assert.Equal(t, defaultDetailType, aws.ToString(entry.DetailType))
}

func TestPublishErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{
			name:   "request failed",
			client: &fakeClient{err: errors.New("access denied")},
		},
		{
			name: "event rejected",
			client: &fakeClient{output: &cloudwatchevents.PutEventsOutput{
				Entries: []types.PutEventsResultEntry{{
					ErrorCode:    aws.String("InternalFailure"),
					ErrorMessage: aws.String("try again"),
				}},
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPublisher(tc.client)
			assert.Error(t, p.Publish(context.Background(), &tarstream.TelemetryData{}))
		})
	}
}

func TestHookLogsFailures(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{}))
	p := NewPublisher(&fakeClient{err: errors.New("access denied")}, WithLogger(logger), WithTimeout(time.Second))

	p.Hook()(context.Background(), &tarstream.TelemetryData{})
	assert.Contains(t, logs.String(), "telemetry submission failed")
	assert.Contains(t, logs.String(), "access denied")
}

func TestHookWithParser(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client)

	// an empty archive consists of two zero blocks
	cfg := tarstream.NewConfig(tarstream.WithTelemetryHook(p.Hook()))
	err := tarstream.Stream(context.Background(), bytes.NewReader(make([]byte, 1024)), tarstream.HandlerFuncs{}, cfg)
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	assert.Contains(t, aws.ToString(client.inputs[0].Entries[0].Detail), `"archive_ended":true`)
}
