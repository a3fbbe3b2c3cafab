// Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package vdbparam validates and marshals the parameters of a vector
// database client into the request records sent to the service.
//
// A request starts as a builder ([NewInsertParam], [NewSearchParam],
// [NewQueryParam], [NewFieldType]). Builders are values: each With method
// returns an updated copy, and Build validates the accumulated state and
// returns a frozen parameter object. Conversion functions then combine the
// parameters with the collection's field types and produce wire records:
//
//	fieldTypes, _ := vdbparam.ConvertCollectionSchema(described)
//	param, err := vdbparam.NewInsertParam().
//		WithCollectionName("books").
//		AddField(vdbparam.MustField("book_id", vdbparam.DataTypeInt64, vdbparam.Int64s{1, 2})).
//		AddField(vdbparam.MustField("embedding", vdbparam.DataTypeFloatVector,
//			vdbparam.FloatVectors{{0.1, 0.2}, {0.3, 0.4}})).
//		Build()
//	req, err := vdbparam.ConvertInsertParam(param, fieldTypes)
//
// # Field values
//
// Column values are a closed set of slice types implementing [Values]:
// [Int64s], [Int32s], [Int16s], [Int8s], [Bools], [Floats], [Doubles],
// [Strings], [FloatVectors] and [BinaryVectors]. A data type accepts only its
// own variant, except that Int32, Int16 and Int8 columns accept any of the
// narrow integer variants. Narrow integers are widened to int32 on the wire
// and range-checked against the declared width.
//
// Vectors are stored row-major in a flat buffer with an explicit dimension.
// Every row of a vector column must have the same length. For binary vectors
// the dimension is measured in bits.
//
// # Search targets
//
// Search vectors are encoded into a placeholder group: a protobuf message
// holding one value tagged "$0" whose entries are the target vectors, float
// vectors as little-endian float32 bytes and binary vectors verbatim. All
// targets of a search must be of one kind and one dimension.
//
// # Arrow IPC
//
// [WriteInsertRequest], [WriteFieldsData] and [WriteCollectionSchema] encode
// records as Arrow IPC streams with request-level values carried in schema
// metadata (see the Meta* constants). Float vector columns are
// FixedSizeList<float32>, binary vector columns FixedSizeBinary. Streams may
// be framed with zstd or lz4 via [WithCompression]; readers detect the
// framing automatically.
//
// # Errors
//
// Every failure is a [*ParamError] whose Type is one of ValueError,
// SchemaError, TypeError or ProtocolError. A failed conversion never returns
// a partial request. Use errors.Is(err, vdbparam.ErrParam) to test for any
// validation error.
//
// # Observability
//
// [Converter] wraps the conversion functions with slog logging and an
// optional [ConvertHook]. The otel and prom sub-packages provide hooks for
// OpenTelemetry and Prometheus.
package vdbparam
