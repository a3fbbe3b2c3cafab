// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import (
	"context"
	"log/slog"
)

// Operation names for ConvertInfo.Operation.
const (
	OpInsert = "insert"
	OpSearch = "search"
	OpQuery  = "query"
)

// ConvertHook provides observability callpoints around request conversion.
// Implementations must be safe for concurrent use.
type ConvertHook interface {
	OnConvertStart(ctx context.Context, info ConvertInfo) (context.Context, HookToken)
	OnConvertEnd(ctx context.Context, token HookToken, info ConvertInfo, stats *ConvertStatistics, err error)
}

// HookToken is an opaque value returned by OnConvertStart and passed back to
// OnConvertEnd. Only meaningful to the ConvertHook that created it.
type HookToken interface{}

// ConvertInfo describes the conversion passed to hooks.
type ConvertInfo struct {
	Operation      string // OpInsert, OpSearch or OpQuery
	CollectionName string
	PartitionNames []string
}

// ConvertStatistics holds counters for one conversion. For inserts they
// describe the marshalled columns; for searches the encoded target vectors.
type ConvertStatistics struct {
	Fields       int64
	Rows         int64
	PayloadBytes int64
}

// RecordField records one marshalled column.
func (s *ConvertStatistics) RecordField(fd *FieldData) {
	s.Fields++
	s.Rows = max(s.Rows, int64(fd.RowCount()))
	s.PayloadBytes += fd.PayloadBytes()
}

// MultiHook fans every callpoint out to several hooks in order. Tokens are
// kept per hook. A hook that panics is logged and skipped; the remaining
// hooks still run, and every hook whose start returned is ended.
type MultiHook []ConvertHook

type multiToken struct {
	tokens  []HookToken
	started []bool
}

func (m MultiHook) OnConvertStart(ctx context.Context, info ConvertInfo) (context.Context, HookToken) {
	mt := multiToken{
		tokens:  make([]HookToken, len(m)),
		started: make([]bool, len(m)),
	}
	for i, h := range m {
		func() {
			defer func() {
				if rv := recover(); rv != nil {
					slog.ErrorContext(ctx, "convert hook start panic", "operation", info.Operation, "hook", i, "err", rv)
				}
			}()
			hookCtx, token := h.OnConvertStart(ctx, info)
			if hookCtx != nil {
				ctx = hookCtx
			}
			mt.tokens[i] = token
			mt.started[i] = true
		}()
	}
	return ctx, mt
}

func (m MultiHook) OnConvertEnd(ctx context.Context, token HookToken, info ConvertInfo, stats *ConvertStatistics, err error) {
	mt, ok := token.(multiToken)
	for i := len(m) - 1; i >= 0; i-- {
		var t HookToken
		if ok {
			if i >= len(mt.started) || !mt.started[i] {
				continue
			}
			t = mt.tokens[i]
		}
		func() {
			defer func() {
				if rv := recover(); rv != nil {
					slog.ErrorContext(ctx, "convert hook end panic", "operation", info.Operation, "hook", i, "err", rv)
				}
			}()
			m[i].OnConvertEnd(ctx, t, info, stats, err)
		}()
	}
}
