package vdbotel

import (
	"context"
	"testing"

	"github.com/Query-farm/vdbparam/vdbparam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setup(t *testing.T) (*vdbparam.Converter, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	cfg := DefaultConfig()
	cfg.TracerProvider = tp
	cfg.MeterProvider = mp
	cfg.CustomAttributes = []attribute.KeyValue{attribute.String("env", "test")}

	conv := vdbparam.NewConverter()
	InstrumentConverter(conv, cfg)
	return conv, recorder, reader
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestSpanForSuccessfulQuery(t *testing.T) {
	conv, recorder, _ := setup(t)

	qp, err := vdbparam.NewQueryParam().WithCollectionName("books").WithOutFields("id").Build()
	require.NoError(t, err)
	_, err = conv.Query(context.Background(), qp)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "vdbparam/query", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)

	v, ok := attrValue(span.Attributes(), "db.collection.name")
	require.True(t, ok)
	assert.Equal(t, "books", v.AsString())
	v, ok = attrValue(span.Attributes(), "env")
	require.True(t, ok)
	assert.Equal(t, "test", v.AsString())
	v, ok = attrValue(span.Attributes(), "vdbparam.fields")
	require.True(t, ok)
	assert.EqualValues(t, 1, v.AsInt64())
}

func TestSpanForFailedSearch(t *testing.T) {
	conv, recorder, _ := setup(t)

	// Built params are always valid; fail at conversion with a nil param.
	_, err := conv.Search(context.Background(), nil)
	require.Error(t, err)
	assert.Empty(t, recorder.Ended(), "nil params are rejected before the hook runs")

	p, err := vdbparam.NewInsertParam().
		WithCollectionName("books").
		AddField(vdbparam.MustField("x", vdbparam.DataTypeBool, vdbparam.Bools{true})).
		Build()
	require.NoError(t, err)
	_, err = conv.Insert(context.Background(), p, nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)
	v, ok := attrValue(span.Attributes(), "vdbparam.error_type")
	require.True(t, ok)
	assert.Equal(t, vdbparam.ErrTypeSchema, v.AsString())
	require.NotEmpty(t, span.Events())
	assert.Equal(t, "exception", span.Events()[0].Name)
}

func TestConversionMetrics(t *testing.T) {
	conv, _, reader := setup(t)

	qp, err := vdbparam.NewQueryParam().WithCollectionName("books").Build()
	require.NoError(t, err)
	for range 3 {
		_, err := conv.Query(context.Background(), qp)
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var counted int64
	var histogramSeen bool
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch m.Name {
		case "vdbparam.conversions":
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				counted += dp.Value
				op, _ := dp.Attributes.Value("vdbparam.operation")
				assert.Equal(t, vdbparam.OpQuery, op.AsString())
			}
		case "vdbparam.conversion.duration":
			_, histogramSeen = m.Data.(metricdata.Histogram[float64])
		}
	}
	assert.EqualValues(t, 3, counted)
	assert.True(t, histogramSeen)
}

func TestTracingDisabled(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	cfg := DefaultConfig()
	cfg.TracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	cfg.MeterProvider = sdkmetric.NewMeterProvider()
	cfg.EnableTracing = false

	conv := vdbparam.NewConverter()
	conv.SetConvertHook(NewHook(cfg))
	qp, err := vdbparam.NewQueryParam().WithCollectionName("books").Build()
	require.NoError(t, err)
	_, err = conv.Query(context.Background(), qp)
	require.NoError(t, err)
	assert.Empty(t, recorder.Ended())
}
