// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarstream

import "context"

//go:generate mockgen -destination=internal/mocks/mocks.go -package=mocks github.com/hashicorp/go-tarstream Handler,Sink

// Handler consumes the events of a [Parser]. Events arrive strictly in archive
// order: for every entry one EntryStarted call, followed by the pushes and the
// End call on the returned sink, and finally one ArchiveEnded call.
//
// EntryStarted returns the sink that receives the content of the entry. A nil
// sink skips the content. Returning an error halts the parser.
type Handler interface {
	EntryStarted(ctx context.Context, meta EntryMetadata) (Sink, error)
	ArchiveEnded(ctx context.Context) error
}

// HandlerFuncs adapts plain functions to the [Handler] interface. Nil
// functions are skipped.
type HandlerFuncs struct {
	OnEntry func(ctx context.Context, meta EntryMetadata) (Sink, error)
	OnEnd   func(ctx context.Context) error
}

// EntryStarted calls OnEntry.
func (h HandlerFuncs) EntryStarted(ctx context.Context, meta EntryMetadata) (Sink, error) {
	if h.OnEntry == nil {
		return nil, nil
	}
	return h.OnEntry(ctx, meta)
}

// ArchiveEnded calls OnEnd.
func (h HandlerFuncs) ArchiveEnded(ctx context.Context) error {
	if h.OnEnd == nil {
		return nil
	}
	return h.OnEnd(ctx)
}
