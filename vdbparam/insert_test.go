package vdbparam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFieldType(t *testing.T, b FieldTypeBuilder) FieldType {
	t.Helper()
	ft, err := b.Build()
	require.NoError(t, err)
	return ft
}

func bookSchema(t *testing.T, autoID bool) []FieldType {
	return []FieldType{
		mustFieldType(t, NewFieldType().WithName("book_id").WithDataType(DataTypeInt64).
			WithPrimaryKey(true).WithAutoID(autoID)),
		mustFieldType(t, NewFieldType().WithName("word_count").WithDataType(DataTypeInt32)),
		mustFieldType(t, NewFieldType().WithName("embedding").WithDataType(DataTypeFloatVector).WithDimension(2)),
	}
}

func TestInsertParamBuild(t *testing.T) {
	p, err := NewInsertParam().
		WithCollectionName("books").
		AddField(MustField("word_count", DataTypeInt32, Int32s{1, 2})).
		Build()
	require.NoError(t, err)
	assert.Equal(t, DefaultPartitionName, p.PartitionName())
	assert.EqualValues(t, 2, p.RowCount())
	assert.Len(t, p.Fields(), 1)
}

func TestInsertParamBuildErrors(t *testing.T) {
	one := MustField("a", DataTypeInt64, Int64s{1})
	two := MustField("b", DataTypeInt64, Int64s{1, 2})
	empty := MustField("c", DataTypeInt64, Int64s{})

	tests := []struct {
		name string
		b    InsertParamBuilder
		want string
	}{
		{"blank collection", NewInsertParam().AddField(one), ErrTypeValue},
		{"blank partition", NewInsertParam().WithCollectionName("c").WithPartitionName("").AddField(one), ErrTypeValue},
		{"no fields", NewInsertParam().WithCollectionName("c"), ErrTypeValue},
		{"nil field", NewInsertParam().WithCollectionName("c").WithFields(one, nil), ErrTypeValue},
		{"zero field", NewInsertParam().WithCollectionName("c").WithFields(&Field{}), ErrTypeValue},
		{"duplicate", NewInsertParam().WithCollectionName("c").WithFields(one, one), ErrTypeSchema},
		{"empty field", NewInsertParam().WithCollectionName("c").WithFields(empty), ErrTypeValue},
		{"unequal rows", NewInsertParam().WithCollectionName("c").WithFields(one, two), ErrTypeValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			requireParamError(t, err, tt.want)
		})
	}
}

func TestConvertInsertSchemaOrder(t *testing.T) {
	p, err := NewInsertParam().
		WithCollectionName("books").
		WithPartitionName("2024").
		WithFields(
			MustField("embedding", DataTypeFloatVector, FloatVectors{{1, 2}, {3, 4}}),
			MustField("word_count", DataTypeInt32, Int16s{10, 20}),
			MustField("book_id", DataTypeInt64, Int64s{7, 8}),
		).
		Build()
	require.NoError(t, err)

	req, err := ConvertInsertParam(p, bookSchema(t, false))
	require.NoError(t, err)
	assert.Equal(t, "books", req.CollectionName)
	assert.Equal(t, "2024", req.PartitionName)
	assert.EqualValues(t, 2, req.NumRows)
	require.NotNil(t, req.Base)
	assert.Equal(t, MsgTypeInsert, req.Base.MsgType)

	require.Len(t, req.FieldsData, 3)
	assert.Equal(t, "book_id", req.FieldsData[0].FieldName)
	assert.Equal(t, "word_count", req.FieldsData[1].FieldName)
	assert.Equal(t, []int32{10, 20}, req.FieldsData[1].Scalars.Ints)
	assert.Equal(t, "embedding", req.FieldsData[2].FieldName)
	assert.EqualValues(t, 2, req.FieldsData[2].Vectors.Dim)
}

func TestConvertInsertOmitsAutoID(t *testing.T) {
	p, err := NewInsertParam().
		WithCollectionName("books").
		WithFields(
			MustField("word_count", DataTypeInt32, Int32s{1}),
			MustField("embedding", DataTypeFloatVector, FloatVectors{{1, 2}}),
		).
		Build()
	require.NoError(t, err)

	req, err := ConvertInsertParam(p, bookSchema(t, true))
	require.NoError(t, err)
	require.Len(t, req.FieldsData, 2)
	for _, fd := range req.FieldsData {
		assert.NotEqual(t, "book_id", fd.FieldName)
	}
}

func TestConvertInsertSchemaErrors(t *testing.T) {
	vec := MustField("embedding", DataTypeFloatVector, FloatVectors{{1, 2}})
	count := MustField("word_count", DataTypeInt32, Int32s{1})
	id := MustField("book_id", DataTypeInt64, Int64s{1})

	tests := []struct {
		name    string
		autoID  bool
		fields  []*Field
		message string
	}{
		{"auto id supplied", true, []*Field{id, count, vec}, "auto generated"},
		{"missing field", false, []*Field{count, vec}, `"book_id" is not provided`},
		{"type mismatch", false, []*Field{
			MustField("book_id", DataTypeInt32, Int32s{1}), count, vec,
		}, "doesn't match the collection schema"},
		{"undeclared field", false, []*Field{
			id, count, vec, MustField("extra", DataTypeBool, Bools{true}),
		}, "not defined in the collection schema"},
		{"wrong dimension", false, []*Field{
			id, count, MustField("embedding", DataTypeFloatVector, FloatVectors{{1, 2, 3}}),
		}, "collection schema requires 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewInsertParam().WithCollectionName("books").WithFields(tt.fields...).Build()
			require.NoError(t, err)
			req, err := ConvertInsertParam(p, bookSchema(t, tt.autoID))
			assert.Nil(t, req)
			pe := requireParamError(t, err, ErrTypeSchema)
			assert.Contains(t, pe.Message, tt.message)
		})
	}
}

func TestConvertInsertNil(t *testing.T) {
	_, err := ConvertInsertParam(nil, nil)
	requireParamError(t, err, ErrTypeValue)
}
