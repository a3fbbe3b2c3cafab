// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package vdbotel provides OpenTelemetry instrumentation for vdbparam
// conversions. It implements the [vdbparam.ConvertHook] interface to add
// tracing and metrics to insert, search and query conversion.
//
// Usage:
//
//	conv := vdbparam.NewConverter()
//	vdbotel.InstrumentConverter(conv, vdbotel.DefaultConfig())
package vdbotel

import (
	"context"
	"fmt"
	"time"

	"github.com/Query-farm/vdbparam/vdbparam"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "vdbparam"

// OtelConfig configures OpenTelemetry instrumentation for a converter.
type OtelConfig struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// EnableTracing enables span creation. Default true.
	EnableTracing bool
	// EnableMetrics enables counter and histogram recording. Default true.
	EnableMetrics bool
	// RecordExceptions calls RecordError on the span for failed conversions.
	// Default true.
	RecordExceptions bool
	// CustomAttributes are added to every span.
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig returns an OtelConfig with tracing, metrics and error
// recording enabled. Providers are resolved from the global OTel SDK at
// instrumentation time.
func DefaultConfig() OtelConfig {
	return OtelConfig{
		EnableTracing:    true,
		EnableMetrics:    true,
		RecordExceptions: true,
	}
}

// InstrumentConverter attaches OpenTelemetry instrumentation to a converter
// via [vdbparam.Converter.SetConvertHook]. It replaces any hook already set;
// combine hooks with [vdbparam.MultiHook] and [NewHook] instead.
func InstrumentConverter(conv *vdbparam.Converter, cfg OtelConfig) {
	conv.SetConvertHook(NewHook(cfg))
}

// NewHook returns the OpenTelemetry hook without installing it.
func NewHook(cfg OtelConfig) vdbparam.ConvertHook {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	hook := &otelHook{
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}

	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		hook.conversionCounter, _ = meter.Int64Counter("vdbparam.conversions",
			metric.WithUnit("{conversion}"),
			metric.WithDescription("Number of request conversions"),
		)
		hook.durationHistogram, _ = meter.Float64Histogram("vdbparam.conversion.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of request conversions"),
		)
	}
	return hook
}

// otelHook implements vdbparam.ConvertHook with OpenTelemetry tracing and metrics.
type otelHook struct {
	cfg               OtelConfig
	tracer            trace.Tracer
	conversionCounter metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

// spanToken is the HookToken returned by OnConvertStart.
type spanToken struct {
	span      trace.Span
	startTime time.Time
}

// OnConvertStart starts an internal span named after the operation.
func (h *otelHook) OnConvertStart(ctx context.Context, info vdbparam.ConvertInfo) (context.Context, vdbparam.HookToken) {
	if !h.cfg.EnableTracing {
		return ctx, &spanToken{startTime: time.Now()}
	}

	attrs := []attribute.KeyValue{
		attribute.String("vdbparam.operation", info.Operation),
		attribute.String("db.collection.name", info.CollectionName),
	}
	if len(info.PartitionNames) > 0 {
		attrs = append(attrs, attribute.StringSlice("vdbparam.partitions", info.PartitionNames))
	}
	attrs = append(attrs, h.cfg.CustomAttributes...)

	ctx, span := h.tracer.Start(ctx, fmt.Sprintf("vdbparam/%s", info.Operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, &spanToken{span: span, startTime: time.Now()}
}

// OnConvertEnd records metrics and span attributes, then ends the span.
func (h *otelHook) OnConvertEnd(ctx context.Context, token vdbparam.HookToken, info vdbparam.ConvertInfo, stats *vdbparam.ConvertStatistics, err error) {
	st, ok := token.(*spanToken)
	if !ok {
		return
	}

	duration := time.Since(st.startTime)

	status := "ok"
	if err != nil {
		status = "error"
	}

	if h.cfg.EnableMetrics {
		metricAttrs := metric.WithAttributes(
			attribute.String("vdbparam.operation", info.Operation),
			attribute.String("status", status),
		)
		if h.conversionCounter != nil {
			h.conversionCounter.Add(ctx, 1, metricAttrs)
		}
		if h.durationHistogram != nil {
			h.durationHistogram.Record(ctx, duration.Seconds(), metricAttrs)
		}
	}

	if st.span == nil {
		return
	}
	if st.span.IsRecording() {
		if stats != nil {
			st.span.SetAttributes(
				attribute.Int64("vdbparam.fields", stats.Fields),
				attribute.Int64("vdbparam.rows", stats.Rows),
				attribute.Int64("vdbparam.payload_bytes", stats.PayloadBytes),
			)
		}

		if err != nil {
			st.span.SetStatus(codes.Error, err.Error())
			if h.cfg.RecordExceptions {
				st.span.RecordError(err)
			}
			errType := fmt.Sprintf("%T", err)
			if pe, ok := err.(*vdbparam.ParamError); ok {
				errType = pe.Type
			}
			st.span.SetAttributes(attribute.String("vdbparam.error_type", errType))
		} else {
			st.span.SetStatus(codes.Ok, "")
		}
	}
	st.span.End()
}
