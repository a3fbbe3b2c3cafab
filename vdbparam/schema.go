// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import (
	"maps"
	"slices"
	"strconv"
)

// TypeParamDim is the type parameter holding a vector field's dimension.
const TypeParamDim = "dim"

// KeyValuePair is a string key-value entry on the wire.
type KeyValuePair struct {
	Key   string
	Value string
}

// FieldSchema is the wire form of one field of a collection schema.
type FieldSchema struct {
	Name         string
	Description  string
	IsPrimaryKey bool
	AutoID       bool
	DataType     DataType
	TypeParams   []KeyValuePair
}

// CollectionSchema is the wire form of a describe-collection result.
type CollectionSchema struct {
	Name        string
	Description string
	AutoID      bool
	Fields      []*FieldSchema
}

// FieldType is the client-side, immutable description of one schema field.
// Build it with [NewFieldType].
type FieldType struct {
	name         string
	description  string
	isPrimaryKey bool
	isAutoID     bool
	dataType     DataType
	typeParams   map[string]string
}

func (f FieldType) Name() string        { return f.name }
func (f FieldType) Description() string { return f.description }
func (f FieldType) IsPrimaryKey() bool  { return f.isPrimaryKey }
func (f FieldType) IsAutoID() bool      { return f.isAutoID }
func (f FieldType) DataType() DataType  { return f.dataType }

// TypeParams returns a copy of the field's type parameters.
func (f FieldType) TypeParams() map[string]string { return maps.Clone(f.typeParams) }

// TypeParam returns a single type parameter.
func (f FieldType) TypeParam(key string) (string, bool) {
	v, ok := f.typeParams[key]
	return v, ok
}

// Dimension returns the vector dimension of a vector field.
func (f FieldType) Dimension() (int64, bool) {
	v, ok := f.typeParams[TypeParamDim]
	if !ok {
		return 0, false
	}
	dim, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return dim, true
}

// FieldTypeBuilder accumulates the attributes of a [FieldType]. Each method
// returns an updated copy; the receiver is never modified.
type FieldTypeBuilder struct {
	name         string
	description  string
	isPrimaryKey bool
	isAutoID     bool
	dataType     DataType
	typeParams   map[string]string
}

// NewFieldType starts building a field type.
func NewFieldType() FieldTypeBuilder {
	return FieldTypeBuilder{}
}

func (b FieldTypeBuilder) WithName(name string) FieldTypeBuilder {
	b.name = name
	return b
}

func (b FieldTypeBuilder) WithDescription(description string) FieldTypeBuilder {
	b.description = description
	return b
}

func (b FieldTypeBuilder) WithPrimaryKey(primaryKey bool) FieldTypeBuilder {
	b.isPrimaryKey = primaryKey
	return b
}

// WithAutoID marks the field as server generated. Auto-ID fields must not be
// supplied on insert.
func (b FieldTypeBuilder) WithAutoID(autoID bool) FieldTypeBuilder {
	b.isAutoID = autoID
	return b
}

func (b FieldTypeBuilder) WithDataType(dataType DataType) FieldTypeBuilder {
	b.dataType = dataType
	return b
}

// WithTypeParams replaces all type parameters.
func (b FieldTypeBuilder) WithTypeParams(params map[string]string) FieldTypeBuilder {
	b.typeParams = maps.Clone(params)
	return b
}

// AddTypeParam sets one type parameter.
func (b FieldTypeBuilder) AddTypeParam(key, value string) FieldTypeBuilder {
	params := make(map[string]string, len(b.typeParams)+1)
	maps.Copy(params, b.typeParams)
	params[key] = value
	b.typeParams = params
	return b
}

// WithDimension sets the vector dimension type parameter.
func (b FieldTypeBuilder) WithDimension(dim int64) FieldTypeBuilder {
	return b.AddTypeParam(TypeParamDim, strconv.FormatInt(dim, 10))
}

// Build validates the accumulated attributes and returns the field type.
func (b FieldTypeBuilder) Build() (FieldType, error) {
	if err := checkNotBlank(b.name, "Field name"); err != nil {
		return FieldType{}, err
	}
	if !b.dataType.IsValid() {
		return FieldType{}, newTypeError(b.name, "field %q: data type %s is illegal", b.name, b.dataType)
	}
	if b.dataType.IsVector() {
		raw, ok := b.typeParams[TypeParamDim]
		if !ok {
			return FieldType{}, newValueError(b.name, "field %q: vector field dimension must be specified", b.name)
		}
		dim, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return FieldType{}, newValueError(b.name, "field %q: vector field dimension must be an integer number, got %q", b.name, raw)
		}
		if dim <= 0 {
			return FieldType{}, newValueError(b.name, "field %q: vector field dimension must be larger than zero", b.name)
		}
		if b.dataType == DataTypeBinaryVector && dim%8 != 0 {
			return FieldType{}, newValueError(b.name, "field %q: binary vector dimension must be a multiple of 8", b.name)
		}
	}

	params := maps.Clone(b.typeParams)
	if params == nil {
		params = map[string]string{}
	}
	return FieldType{
		name:         b.name,
		description:  b.description,
		isPrimaryKey: b.isPrimaryKey,
		isAutoID:     b.isAutoID,
		dataType:     b.dataType,
		typeParams:   params,
	}, nil
}

// ConvertFieldSchema converts a wire field schema into a client field type.
func ConvertFieldSchema(field *FieldSchema) (FieldType, error) {
	if field == nil {
		return FieldType{}, newProtocolError("field schema cannot be nil")
	}
	b := NewFieldType().
		WithName(field.Name).
		WithDescription(field.Description).
		WithPrimaryKey(field.IsPrimaryKey).
		WithAutoID(field.AutoID).
		WithDataType(field.DataType)
	for _, kv := range field.TypeParams {
		b = b.AddTypeParam(kv.Key, kv.Value)
	}
	return b.Build()
}

// ConvertFieldType converts a client field type into its wire schema. Type
// parameters are emitted sorted by key.
func ConvertFieldType(field FieldType) *FieldSchema {
	fs := &FieldSchema{
		Name:         field.name,
		Description:  field.description,
		IsPrimaryKey: field.isPrimaryKey,
		AutoID:       field.isAutoID,
		DataType:     field.dataType,
	}
	for _, k := range slices.Sorted(maps.Keys(field.typeParams)) {
		fs.TypeParams = append(fs.TypeParams, KeyValuePair{Key: k, Value: field.typeParams[k]})
	}
	return fs
}

// ConvertCollectionSchema converts every field of a describe-collection
// result, preserving declaration order.
func ConvertCollectionSchema(schema *CollectionSchema) ([]FieldType, error) {
	if schema == nil {
		return nil, newProtocolError("collection schema cannot be nil")
	}
	out := make([]FieldType, 0, len(schema.Fields))
	for _, fs := range schema.Fields {
		ft, err := ConvertFieldSchema(fs)
		if err != nil {
			return nil, err
		}
		out = append(out, ft)
	}
	return out, nil
}
