// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

var dataTypeDictType = &arrow.DictionaryType{
	IndexType: arrow.PrimitiveTypes.Int16,
	ValueType: arrow.BinaryTypes.String,
}

// describeFields are the columns of a collection schema description: one row
// per field schema.
var describeFields = []arrow.Field{
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "description", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "data_type", Type: dataTypeDictType},
	{Name: "is_primary_key", Type: &arrow.BooleanType{}},
	{Name: "auto_id", Type: &arrow.BooleanType{}},
	{Name: "type_params", Type: arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String)},
}

// Schema-level metadata keys of a collection schema description.
const (
	MetaSchemaName        = "vdb.schema_name"
	MetaSchemaDescription = "vdb.schema_description"
	MetaSchemaAutoID      = "vdb.schema_auto_id"
)

// WriteCollectionSchema encodes a collection schema as an Arrow IPC stream
// so it can be cached or exchanged with tooling.
func WriteCollectionSchema(w io.Writer, cs *CollectionSchema, opts ...EncodeOption) error {
	if cs == nil {
		return newValueError("", "collection schema cannot be nil")
	}
	cfg := newEncodeConfig(opts)
	mem := cfg.mem

	nameBuilder := array.NewStringBuilder(mem)
	defer nameBuilder.Release()

	descBuilder := array.NewStringBuilder(mem)
	defer descBuilder.Release()

	typeBuilder := array.NewDictionaryBuilder(mem, dataTypeDictType).(*array.BinaryDictionaryBuilder)
	defer typeBuilder.Release()

	pkBuilder := array.NewBooleanBuilder(mem)
	defer pkBuilder.Release()

	autoIDBuilder := array.NewBooleanBuilder(mem)
	defer autoIDBuilder.Release()

	paramsBuilder := array.NewMapBuilder(mem, arrow.BinaryTypes.String, arrow.BinaryTypes.String, false)
	defer paramsBuilder.Release()
	keyBuilder := paramsBuilder.KeyBuilder().(*array.StringBuilder)
	itemBuilder := paramsBuilder.ItemBuilder().(*array.StringBuilder)

	for i, fs := range cs.Fields {
		if fs == nil {
			return newValueError("", "field schema %d cannot be nil", i)
		}
		nameBuilder.Append(fs.Name)

		// Description (nullable)
		if fs.Description == "" {
			descBuilder.AppendNull()
		} else {
			descBuilder.Append(fs.Description)
		}

		if err := typeBuilder.AppendString(fs.DataType.String()); err != nil {
			return fmt.Errorf("encoding data_type of field %q: %w", fs.Name, err)
		}
		pkBuilder.Append(fs.IsPrimaryKey)
		autoIDBuilder.Append(fs.AutoID)

		paramsBuilder.Append(true)
		for _, kv := range fs.TypeParams {
			keyBuilder.Append(kv.Key)
			itemBuilder.Append(kv.Value)
		}
	}

	cols := []arrow.Array{
		nameBuilder.NewArray(),
		descBuilder.NewArray(),
		typeBuilder.NewArray(),
		pkBuilder.NewArray(),
		autoIDBuilder.NewArray(),
		paramsBuilder.NewArray(),
	}
	for _, c := range cols {
		defer c.Release()
	}

	autoID := "false"
	if cs.AutoID {
		autoID = "true"
	}
	md := arrow.NewMetadata(
		[]string{MetaDescribeVersion, MetaSchemaAutoID, MetaSchemaDescription, MetaSchemaName},
		[]string{DescribeVersion, autoID, cs.Description, cs.Name},
	)
	schema := arrow.NewSchema(describeFields, &md)
	rec := array.NewRecord(schema, cols, int64(len(cs.Fields)))
	defer rec.Release()

	return writeRecord(w, rec, cfg)
}

// ReadCollectionSchema decodes a stream written by [WriteCollectionSchema].
// Columns are located by name; each field's data type must be recognized.
func ReadCollectionSchema(r io.Reader) (*CollectionSchema, error) {
	rec, err := readRecord(r)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	schema := rec.Schema()
	md := schema.Metadata()
	if v, ok := md.GetValue(MetaDescribeVersion); !ok || v != DescribeVersion {
		return nil, newProtocolError("unsupported describe version %q, expected %q", v, DescribeVersion)
	}

	col := func(name string) (arrow.Array, error) {
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, newProtocolError("describe stream is missing column %q", name)
		}
		return rec.Column(idx[0]), nil
	}
	var cols [6]arrow.Array
	for i, f := range describeFields {
		c, err := col(f.Name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	names, ok1 := cols[0].(*array.String)
	descs, ok2 := cols[1].(*array.String)
	types, ok3 := cols[2].(*array.Dictionary)
	pks, ok4 := cols[3].(*array.Boolean)
	autoIDs, ok5 := cols[4].(*array.Boolean)
	params, ok6 := cols[5].(*array.Map)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return nil, newProtocolError("describe stream has unexpected column types")
	}
	typeNames, ok := types.Dictionary().(*array.String)
	if !ok {
		return nil, newProtocolError("data_type dictionary is not a string array")
	}
	keys, ok := params.Keys().(*array.String)
	if !ok {
		return nil, newProtocolError("type_params keys are not strings")
	}
	items, ok := params.Items().(*array.String)
	if !ok {
		return nil, newProtocolError("type_params values are not strings")
	}

	autoID, _ := md.GetValue(MetaSchemaAutoID)
	name, _ := md.GetValue(MetaSchemaName)
	desc, _ := md.GetValue(MetaSchemaDescription)
	cs := &CollectionSchema{
		Name:        name,
		Description: desc,
		AutoID:      autoID == "true",
		Fields:      make([]*FieldSchema, 0, rec.NumRows()),
	}
	for i := range int(rec.NumRows()) {
		dt, err := ParseDataType(typeNames.Value(types.GetValueIndex(i)))
		if err != nil {
			return nil, newProtocolError("field %q: %v", names.Value(i), err)
		}
		fs := &FieldSchema{
			Name:         names.Value(i),
			IsPrimaryKey: pks.Value(i),
			AutoID:       autoIDs.Value(i),
			DataType:     dt,
		}
		if descs.IsValid(i) {
			fs.Description = descs.Value(i)
		}
		start, end := params.ValueOffsets(i)
		for j := start; j < end; j++ {
			fs.TypeParams = append(fs.TypeParams, KeyValuePair{
				Key:   keys.Value(int(j)),
				Value: items.Value(int(j)),
			})
		}
		cs.Fields = append(cs.Fields, fs)
	}
	return cs, nil
}

// DescribeFieldTypes renders validated field types as a collection schema
// description, in the given order.
func DescribeFieldTypes(name string, fields []FieldType) *CollectionSchema {
	cs := &CollectionSchema{Name: name, Fields: make([]*FieldSchema, 0, len(fields))}
	for _, f := range fields {
		cs.Fields = append(cs.Fields, ConvertFieldType(f))
	}
	return cs
}
