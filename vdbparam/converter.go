// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import (
	"context"
	"log/slog"
)

// Converter wraps the conversion functions with logging and an optional
// [ConvertHook]. Configure it before first use; after that it is safe for
// concurrent use.
type Converter struct {
	hook   ConvertHook
	logger *slog.Logger
}

// NewConverter creates a converter that logs through slog.Default.
func NewConverter() *Converter {
	return &Converter{}
}

// SetConvertHook registers a hook that is called around each conversion.
func (c *Converter) SetConvertHook(hook ConvertHook) {
	c.hook = hook
}

// SetLogger overrides the logger. A nil logger restores slog.Default.
func (c *Converter) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

func (c *Converter) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// run brackets fn with the hook callpoints. Hook panics are logged and
// swallowed; they never affect the conversion result.
func (c *Converter) run(ctx context.Context, info ConvertInfo, fn func(ctx context.Context, stats *ConvertStatistics) error) error {
	var hookToken HookToken
	var hookActive bool
	stats := &ConvertStatistics{}

	if c.hook != nil {
		func() {
			defer func() {
				if rv := recover(); rv != nil {
					c.log().Error("convert hook start panic", "operation", info.Operation, "err", rv)
				}
			}()
			var hookCtx context.Context
			hookCtx, hookToken = c.hook.OnConvertStart(ctx, info)
			if hookCtx != nil {
				ctx = hookCtx
			}
			hookActive = true
		}()
	}

	err := fn(ctx, stats)
	if err != nil {
		c.log().DebugContext(ctx, "conversion failed",
			"operation", info.Operation,
			"collection", info.CollectionName,
			"err", err)
	} else {
		c.log().DebugContext(ctx, "conversion done",
			"operation", info.Operation,
			"collection", info.CollectionName,
			"fields", stats.Fields,
			"rows", stats.Rows,
			"payload_bytes", stats.PayloadBytes)
	}

	// Hook end (panic-safe)
	if hookActive {
		func() {
			defer func() {
				if rv := recover(); rv != nil {
					c.log().Error("convert hook end panic", "operation", info.Operation, "err", rv)
				}
			}()
			c.hook.OnConvertEnd(ctx, hookToken, info, stats, err)
		}()
	}
	return err
}

// Insert converts insert parameters against the collection's field types.
// See [ConvertInsertParam].
func (c *Converter) Insert(ctx context.Context, param *InsertParam, fieldTypes []FieldType) (*InsertRequest, error) {
	if param == nil {
		return nil, newValueError("", "insert param cannot be nil")
	}
	info := ConvertInfo{
		Operation:      OpInsert,
		CollectionName: param.collectionName,
		PartitionNames: []string{param.partitionName},
	}
	var req *InsertRequest
	err := c.run(ctx, info, func(_ context.Context, stats *ConvertStatistics) error {
		r, err := ConvertInsertParam(param, fieldTypes)
		if err != nil {
			return err
		}
		for _, fd := range r.FieldsData {
			stats.RecordField(fd)
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Search converts search parameters. See [ConvertSearchParam].
func (c *Converter) Search(ctx context.Context, param *SearchParam) (*SearchRequest, error) {
	if param == nil {
		return nil, newValueError("", "search param cannot be nil")
	}
	info := ConvertInfo{
		Operation:      OpSearch,
		CollectionName: param.collectionName,
		PartitionNames: cloneStrings(param.partitionNames),
	}
	var req *SearchRequest
	err := c.run(ctx, info, func(_ context.Context, stats *ConvertStatistics) error {
		r, err := ConvertSearchParam(param)
		if err != nil {
			return err
		}
		stats.Fields = 1
		stats.Rows = int64(len(param.vectors))
		stats.PayloadBytes = int64(len(r.PlaceholderGroup))
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Query converts query parameters. See [ConvertQueryParam].
func (c *Converter) Query(ctx context.Context, param *QueryParam) (*QueryRequest, error) {
	if param == nil {
		return nil, newValueError("", "query param cannot be nil")
	}
	info := ConvertInfo{
		Operation:      OpQuery,
		CollectionName: param.collectionName,
		PartitionNames: cloneStrings(param.partitionNames),
	}
	var req *QueryRequest
	err := c.run(ctx, info, func(_ context.Context, stats *ConvertStatistics) error {
		r, err := ConvertQueryParam(param)
		if err != nil {
			return err
		}
		stats.Fields = int64(len(r.OutputFields))
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}
