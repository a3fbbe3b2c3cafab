// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

// DefaultPartitionName is the partition rows are inserted into when none is
// given.
const DefaultPartitionName = "_default"

// MsgBase is the common header of DML requests.
type MsgBase struct {
	MsgType MsgType
}

// InsertRequest is the wire record for an insert call. FieldsData follows the
// collection schema's declaration order.
type InsertRequest struct {
	Base           *MsgBase
	DbName         string
	CollectionName string
	PartitionName  string
	FieldsData     []*FieldData
	NumRows        int64
}

// InsertParam is a validated set of insert parameters. Build it with
// [NewInsertParam].
type InsertParam struct {
	collectionName string
	partitionName  string
	fields         []*Field
	rowCount       int64
}

func (p *InsertParam) CollectionName() string { return p.collectionName }
func (p *InsertParam) PartitionName() string  { return p.partitionName }
func (p *InsertParam) RowCount() int64        { return p.rowCount }

// Fields returns the supplied fields in input order.
func (p *InsertParam) Fields() []*Field { return append([]*Field(nil), p.fields...) }

// InsertParamBuilder accumulates insert parameters. Each method returns an
// updated copy.
type InsertParamBuilder struct {
	collectionName string
	partitionName  string
	fields         []*Field
}

// NewInsertParam starts building insert parameters targeting the default
// partition.
func NewInsertParam() InsertParamBuilder {
	return InsertParamBuilder{partitionName: DefaultPartitionName}
}

func (b InsertParamBuilder) WithCollectionName(name string) InsertParamBuilder {
	b.collectionName = name
	return b
}

func (b InsertParamBuilder) WithPartitionName(name string) InsertParamBuilder {
	b.partitionName = name
	return b
}

// WithFields replaces the field list.
func (b InsertParamBuilder) WithFields(fields ...*Field) InsertParamBuilder {
	b.fields = append([]*Field(nil), fields...)
	return b
}

// AddField appends one field.
func (b InsertParamBuilder) AddField(field *Field) InsertParamBuilder {
	b.fields = append(append([]*Field(nil), b.fields...), field)
	return b
}

// Build validates the parameters. Every field must be non-empty, names must
// be unique, and all fields must have the same row count.
func (b InsertParamBuilder) Build() (*InsertParam, error) {
	if err := checkNotBlank(b.collectionName, "Collection name"); err != nil {
		return nil, err
	}
	if err := checkNotBlank(b.partitionName, "Partition name"); err != nil {
		return nil, err
	}
	if len(b.fields) == 0 {
		return nil, newValueError("", "fields cannot be empty")
	}

	seen := make(map[string]struct{}, len(b.fields))
	rowCount := -1
	for _, f := range b.fields {
		if f == nil {
			return nil, newValueError("", "field cannot be nil")
		}
		if f.Values() == nil {
			return nil, newValueError(f.Name(), "field %q: values cannot be nil", f.Name())
		}
		if _, dup := seen[f.Name()]; dup {
			return nil, newSchemaError(f.Name(), "field %q is provided more than once", f.Name())
		}
		seen[f.Name()] = struct{}{}

		n := f.RowCount()
		if n == 0 {
			return nil, newValueError(f.Name(), "field %q: value cannot be empty", f.Name())
		}
		if rowCount >= 0 && n != rowCount {
			return nil, newValueError(f.Name(), "row count of fields must be equal: field %q has %d rows, expected %d", f.Name(), n, rowCount)
		}
		rowCount = n
	}

	return &InsertParam{
		collectionName: b.collectionName,
		partitionName:  b.partitionName,
		fields:         append([]*Field(nil), b.fields...),
		rowCount:       int64(rowCount),
	}, nil
}

// ConvertInsertParam validates the insert parameters against the collection
// schema and builds the insert request.
//
// Fields are emitted in schema order. A schema field marked auto-ID must not
// be supplied and is otherwise skipped; every other schema field must be
// supplied with a matching data type. Supplied fields that the schema does
// not declare are rejected.
func ConvertInsertParam(param *InsertParam, fieldTypes []FieldType) (*InsertRequest, error) {
	if param == nil {
		return nil, newValueError("", "insert param cannot be nil")
	}

	supplied := make(map[string]*Field, len(param.fields))
	for _, f := range param.fields {
		supplied[f.Name()] = f
	}

	req := &InsertRequest{
		Base:           &MsgBase{MsgType: MsgTypeInsert},
		CollectionName: param.collectionName,
		PartitionName:  param.partitionName,
		NumRows:        param.rowCount,
		FieldsData:     make([]*FieldData, 0, len(fieldTypes)),
	}

	declared := make(map[string]struct{}, len(fieldTypes))
	for _, ft := range fieldTypes {
		declared[ft.Name()] = struct{}{}
		field, found := supplied[ft.Name()]
		if !found {
			if ft.IsAutoID() {
				continue
			}
			return nil, newSchemaError(ft.Name(), "field %q is not provided", ft.Name())
		}
		if ft.IsAutoID() {
			return nil, newSchemaError(ft.Name(), "field %q is auto generated, no need to input", ft.Name())
		}
		if ft.DataType() != field.DataType() {
			return nil, newSchemaError(ft.Name(), "field %q data type %s doesn't match the collection schema type %s",
				ft.Name(), field.DataType(), ft.DataType())
		}
		if err := checkDimension(ft, field); err != nil {
			return nil, err
		}

		fd, err := MarshalField(field.Name(), field.DataType(), field.Values())
		if err != nil {
			return nil, err
		}
		req.FieldsData = append(req.FieldsData, fd)
	}

	for _, f := range param.fields {
		if _, ok := declared[f.Name()]; !ok {
			return nil, newSchemaError(f.Name(), "field %q is not defined in the collection schema", f.Name())
		}
	}
	return req, nil
}

// checkDimension compares vector row lengths with the schema dimension when
// the schema declares one.
func checkDimension(ft FieldType, field *Field) error {
	dim, ok := ft.Dimension()
	if !ok {
		return nil
	}
	switch rows := field.Values().(type) {
	case FloatVectors:
		for i, row := range rows {
			if int64(row.Dim()) != dim {
				return newSchemaError(ft.Name(), "field %q: row %d has dimension %d, collection schema requires %d", ft.Name(), i, row.Dim(), dim)
			}
		}
	case BinaryVectors:
		for i, row := range rows {
			if int64(row.Dim()) != dim {
				return newSchemaError(ft.Name(), "field %q: row %d has dimension %d, collection schema requires %d", ft.Name(), i, row.Dim(), dim)
			}
		}
	}
	return nil
}
