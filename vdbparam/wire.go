// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import (
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
)

// EncodeOption configures the Arrow IPC encoders.
type EncodeOption func(*encodeConfig)

type encodeConfig struct {
	mem         memory.Allocator
	compression Compression
	requestID   string
}

func newEncodeConfig(opts []EncodeOption) *encodeConfig {
	cfg := &encodeConfig{mem: memory.NewGoAllocator()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithAllocator sets the Arrow allocator used while building batches.
func WithAllocator(mem memory.Allocator) EncodeOption {
	return func(c *encodeConfig) { c.mem = mem }
}

// WithCompression frames the encoded stream with zstd or lz4.
func WithCompression(c Compression) EncodeOption {
	return func(cfg *encodeConfig) { cfg.compression = c }
}

// WithRequestID sets the request identifier written to the stream metadata.
// A random UUID is used when none is given.
func WithRequestID(id string) EncodeOption {
	return func(c *encodeConfig) { c.requestID = id }
}

// arrowTypeFor maps a field data record to its Arrow column type.
func arrowTypeFor(fd *FieldData) (arrow.DataType, error) {
	switch fd.Type {
	case DataTypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case DataTypeInt32, DataTypeInt16, DataTypeInt8:
		return arrow.PrimitiveTypes.Int32, nil
	case DataTypeBool:
		return &arrow.BooleanType{}, nil
	case DataTypeFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case DataTypeDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case DataTypeString, DataTypeVarChar:
		return arrow.BinaryTypes.String, nil
	case DataTypeFloatVector:
		if fd.Vectors == nil || fd.Vectors.Dim <= 0 {
			return nil, newProtocolError("field %q: float vector record has no dimension", fd.FieldName)
		}
		return arrow.FixedSizeListOf(int32(fd.Vectors.Dim), arrow.PrimitiveTypes.Float32), nil
	case DataTypeBinaryVector:
		if fd.Vectors == nil || fd.Vectors.Dim <= 0 || fd.Vectors.Dim%8 != 0 {
			return nil, newProtocolError("field %q: binary vector record has an invalid dimension", fd.FieldName)
		}
		return &arrow.FixedSizeBinaryType{ByteWidth: int(fd.Vectors.Dim / 8)}, nil
	default:
		return nil, newTypeError(fd.FieldName, "field %q: unsupported data type %s", fd.FieldName, fd.Type)
	}
}

// buildColumn creates the Arrow array holding all rows of a field.
func buildColumn(mem memory.Allocator, fd *FieldData, dt arrow.DataType) (arrow.Array, error) {
	if fd.Type.IsVector() {
		if fd.Vectors == nil {
			return nil, newProtocolError("field %q: %s record has no vector payload", fd.FieldName, fd.Type)
		}
		return buildVectorColumn(mem, fd, dt)
	}

	s := fd.Scalars
	if s == nil || s.Kind != scalarKindFor(fd.Type) {
		return nil, newProtocolError("field %q: %s record has no matching scalar payload", fd.FieldName, fd.Type)
	}
	switch s.Kind {
	case ScalarLong:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(s.Longs, nil)
		return b.NewArray(), nil
	case ScalarInt:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.AppendValues(s.Ints, nil)
		return b.NewArray(), nil
	case ScalarBool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(s.Bools, nil)
		return b.NewArray(), nil
	case ScalarFloat:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		b.AppendValues(s.Floats, nil)
		return b.NewArray(), nil
	case ScalarDouble:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(s.Doubles, nil)
		return b.NewArray(), nil
	case ScalarString:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.AppendValues(s.Strings, nil)
		return b.NewArray(), nil
	default:
		return nil, newProtocolError("field %q: unsupported scalar kind %s", fd.FieldName, s.Kind)
	}
}

func buildVectorColumn(mem memory.Allocator, fd *FieldData, dt arrow.DataType) (arrow.Array, error) {
	v := fd.Vectors
	switch t := dt.(type) {
	case *arrow.FixedSizeListType:
		dim := int(t.Len())
		if len(v.FloatVector)%dim != 0 {
			return nil, newProtocolError("field %q: %d floats is not a multiple of dimension %d", fd.FieldName, len(v.FloatVector), dim)
		}
		b := array.NewFixedSizeListBuilder(mem, t.Len(), arrow.PrimitiveTypes.Float32)
		defer b.Release()
		vb := b.ValueBuilder().(*array.Float32Builder)
		for off := 0; off < len(v.FloatVector); off += dim {
			b.Append(true)
			vb.AppendValues(v.FloatVector[off:off+dim], nil)
		}
		return b.NewArray(), nil
	case *arrow.FixedSizeBinaryType:
		width := t.ByteWidth
		if len(v.BinaryVector)%width != 0 {
			return nil, newProtocolError("field %q: %d bytes is not a multiple of row size %d", fd.FieldName, len(v.BinaryVector), width)
		}
		b := array.NewFixedSizeBinaryBuilder(mem, t)
		defer b.Release()
		for off := 0; off < len(v.BinaryVector); off += width {
			b.Append(v.BinaryVector[off : off+width])
		}
		return b.NewArray(), nil
	default:
		return nil, newProtocolError("field %q: unexpected vector column type %v", fd.FieldName, dt)
	}
}

// fieldsToRecord builds one record batch whose columns are the given fields
// in order. All fields must have the same row count.
func fieldsToRecord(mem memory.Allocator, fields []*FieldData, meta map[string]string) (arrow.Record, error) {
	arrowFields := make([]arrow.Field, 0, len(fields))
	cols := make([]arrow.Array, 0, len(fields))
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	rows := -1
	for _, fd := range fields {
		if fd == nil {
			return nil, newValueError("", "field data cannot be nil")
		}
		dt, err := arrowTypeFor(fd)
		if err != nil {
			return nil, err
		}
		col, err := buildColumn(mem, fd, dt)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if rows >= 0 && col.Len() != rows {
			return nil, newValueError(fd.FieldName, "field %q has %d rows, expected %d", fd.FieldName, col.Len(), rows)
		}
		rows = col.Len()

		arrowFields = append(arrowFields, arrow.Field{
			Name:     fd.FieldName,
			Type:     dt,
			Metadata: arrow.NewMetadata([]string{MetaDataType}, []string{fd.Type.String()}),
		})
	}
	if rows < 0 {
		rows = 0
	}

	keys := make([]string, 0, len(meta))
	vals := make([]string, 0, len(meta))
	for _, k := range sortedKeys(meta) {
		keys = append(keys, k)
		vals = append(vals, meta[k])
	}
	md := arrow.NewMetadata(keys, vals)
	schema := arrow.NewSchema(arrowFields, &md)
	return array.NewRecord(schema, cols, int64(rows)), nil
}

// WriteFieldsData writes fields as a single-batch Arrow IPC stream. meta is
// stored as schema metadata alongside the protocol version and request ID.
func WriteFieldsData(w io.Writer, fields []*FieldData, meta map[string]string, opts ...EncodeOption) error {
	cfg := newEncodeConfig(opts)

	full := make(map[string]string, len(meta)+2)
	for k, v := range meta {
		full[k] = v
	}
	full[MetaProtocolVersion] = ProtocolVersion
	if cfg.requestID != "" {
		full[MetaRequestID] = cfg.requestID
	} else if _, ok := full[MetaRequestID]; !ok {
		full[MetaRequestID] = uuid.NewString()
	}

	rec, err := fieldsToRecord(cfg.mem, fields, full)
	if err != nil {
		return err
	}
	defer rec.Release()

	return writeRecord(w, rec, cfg)
}

// writeRecord writes one record as a complete IPC stream: schema, batch, EOS.
func writeRecord(w io.Writer, rec arrow.Record, cfg *encodeConfig) error {
	cw, closeFrame, err := compressWriter(w, cfg.compression)
	if err != nil {
		return err
	}
	writer := ipc.NewWriter(cw, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(cfg.mem))
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("writing record batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing IPC writer: %w", err)
	}
	if err := closeFrame(); err != nil {
		return fmt.Errorf("closing %s frame: %w", cfg.compression, err)
	}
	return nil
}

// readRecord reads the first batch of an IPC stream, transparently removing
// compression framing. The returned record is retained; callers release it.
func readRecord(r io.Reader) (arrow.Record, error) {
	rr, closeFrame, err := decompressReader(r)
	if err != nil {
		return nil, err
	}
	defer closeFrame()

	reader, err := ipc.NewReader(rr)
	if err != nil {
		return nil, fmt.Errorf("reading IPC stream: %w", err)
	}
	defer reader.Release()

	if !reader.Next() {
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("reading record batch: %w", err)
		}
		return nil, newProtocolError("IPC stream contains no record batch")
	}
	rec := reader.Record()
	rec.Retain()

	// Drain remaining batches (read to EOS)
	for reader.Next() {
	}
	return rec, nil
}

// ReadFieldsData reads a stream written by [WriteFieldsData] and returns the
// fields in column order together with the stream metadata.
func ReadFieldsData(r io.Reader) ([]*FieldData, map[string]string, error) {
	rec, err := readRecord(r)
	if err != nil {
		return nil, nil, err
	}
	defer rec.Release()

	schema := rec.Schema()
	md := schema.Metadata()
	meta := make(map[string]string, md.Len())
	for i := range md.Len() {
		meta[md.Keys()[i]] = md.Values()[i]
	}
	if v, ok := meta[MetaProtocolVersion]; ok && v != ProtocolVersion {
		return nil, nil, newProtocolError("unsupported protocol version %q, expected %q", v, ProtocolVersion)
	}

	fields := make([]*FieldData, 0, schema.NumFields())
	for i, f := range schema.Fields() {
		fd, err := columnToFieldData(f, rec.Column(i))
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, fd)
	}
	return fields, meta, nil
}

// columnToFieldData converts one Arrow column back into a field data record,
// checking that the column type agrees with the declared data type.
func columnToFieldData(f arrow.Field, col arrow.Array) (*FieldData, error) {
	name := f.Name
	tag, ok := f.Metadata.GetValue(MetaDataType)
	if !ok {
		return nil, newProtocolError("column %q: missing %s metadata", name, MetaDataType)
	}
	dt, err := ParseDataType(tag)
	if err != nil {
		return nil, newProtocolError("column %q: %v", name, err)
	}
	if col.NullN() > 0 {
		return nil, newProtocolError("column %q: null values are not supported", name)
	}

	fd := &FieldData{FieldName: name, Type: dt}
	want := scalarKindFor(dt)
	badType := func() error {
		return newProtocolError("column %q: Arrow type %v does not carry %s data", name, col.DataType(), dt)
	}

	switch c := col.(type) {
	case *array.Int64:
		if want != ScalarLong {
			return nil, badType()
		}
		fd.Scalars = &ScalarField{Kind: ScalarLong, Longs: append([]int64{}, c.Int64Values()...)}
	case *array.Int32:
		if want != ScalarInt {
			return nil, badType()
		}
		fd.Scalars = &ScalarField{Kind: ScalarInt, Ints: append([]int32{}, c.Int32Values()...)}
	case *array.Boolean:
		if want != ScalarBool {
			return nil, badType()
		}
		vals := make([]bool, c.Len())
		for i := range vals {
			vals[i] = c.Value(i)
		}
		fd.Scalars = &ScalarField{Kind: ScalarBool, Bools: vals}
	case *array.Float32:
		if want != ScalarFloat {
			return nil, badType()
		}
		fd.Scalars = &ScalarField{Kind: ScalarFloat, Floats: append([]float32{}, c.Float32Values()...)}
	case *array.Float64:
		if want != ScalarDouble {
			return nil, badType()
		}
		fd.Scalars = &ScalarField{Kind: ScalarDouble, Doubles: append([]float64{}, c.Float64Values()...)}
	case *array.String:
		if want != ScalarString {
			return nil, badType()
		}
		vals := make([]string, c.Len())
		for i := range vals {
			vals[i] = c.Value(i)
		}
		fd.Scalars = &ScalarField{Kind: ScalarString, Strings: vals}
	case *array.FixedSizeList:
		if dt != DataTypeFloatVector {
			return nil, badType()
		}
		dim := int(c.DataType().(*arrow.FixedSizeListType).Len())
		values, ok := c.ListValues().(*array.Float32)
		if !ok {
			return nil, badType()
		}
		start := c.Data().Offset() * dim
		flat := values.Float32Values()[start : start+c.Len()*dim]
		fd.Vectors = &VectorField{Dim: int64(dim), FloatVector: append([]float32{}, flat...)}
	case *array.FixedSizeBinary:
		if dt != DataTypeBinaryVector {
			return nil, badType()
		}
		width := c.DataType().(*arrow.FixedSizeBinaryType).ByteWidth
		buf := make([]byte, 0, c.Len()*width)
		for i := range c.Len() {
			buf = append(buf, c.Value(i)...)
		}
		fd.Vectors = &VectorField{Dim: int64(width * 8), BinaryVector: buf}
	default:
		return nil, badType()
	}
	return fd, nil
}

// WriteInsertRequest encodes an insert request as an Arrow IPC stream: the
// fields data become columns and the request header becomes metadata.
func WriteInsertRequest(w io.Writer, req *InsertRequest, opts ...EncodeOption) error {
	if req == nil {
		return newValueError("", "insert request cannot be nil")
	}
	msgType := MsgTypeInsert
	if req.Base != nil {
		msgType = req.Base.MsgType
	}
	meta := map[string]string{
		MetaCollection: req.CollectionName,
		MetaPartition:  req.PartitionName,
		MetaMsgType:    msgType.String(),
		MetaNumRows:    strconv.FormatInt(req.NumRows, 10),
	}
	return WriteFieldsData(w, req.FieldsData, meta, opts...)
}

// ReadInsertRequest decodes a stream written by [WriteInsertRequest].
func ReadInsertRequest(r io.Reader) (*InsertRequest, error) {
	fields, meta, err := ReadFieldsData(r)
	if err != nil {
		return nil, err
	}
	collection, ok := meta[MetaCollection]
	if !ok || collection == "" {
		return nil, newProtocolError("missing %q in stream metadata", MetaCollection)
	}
	if mt := meta[MetaMsgType]; mt != MsgTypeInsert.String() {
		return nil, newProtocolError("unexpected message type %q, expected %q", mt, MsgTypeInsert)
	}
	numRows, err := strconv.ParseInt(meta[MetaNumRows], 10, 64)
	if err != nil {
		return nil, newProtocolError("invalid %s %q: %v", MetaNumRows, meta[MetaNumRows], err)
	}
	for _, fd := range fields {
		if int64(fd.RowCount()) != numRows {
			return nil, newProtocolError("column %q has %d rows, header declares %d", fd.FieldName, fd.RowCount(), numRows)
		}
	}
	return &InsertRequest{
		Base:           &MsgBase{MsgType: MsgTypeInsert},
		CollectionName: collection,
		PartitionName:  meta[MetaPartition],
		FieldsData:     fields,
		NumRows:        numRows,
	}, nil
}
