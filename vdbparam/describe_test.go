package vdbparam

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionSchemaRoundTrip(t *testing.T) {
	cs := &CollectionSchema{
		Name:        "books",
		Description: "library",
		AutoID:      true,
		Fields: []*FieldSchema{
			{Name: "book_id", DataType: DataTypeInt64, IsPrimaryKey: true, AutoID: true},
			{Name: "title", Description: "book title", DataType: DataTypeVarChar,
				TypeParams: []KeyValuePair{{Key: "max_length", Value: "256"}}},
			{Name: "embedding", DataType: DataTypeFloatVector,
				TypeParams: []KeyValuePair{{Key: TypeParamDim, Value: "8"}}},
			{Name: "hash", DataType: DataTypeBinaryVector,
				TypeParams: []KeyValuePair{{Key: TypeParamDim, Value: "64"}}},
		},
	}
	for _, c := range []Compression{CompressionNone, CompressionZstd} {
		var buf bytes.Buffer
		require.NoError(t, WriteCollectionSchema(&buf, cs, WithCompression(c)))
		back, err := ReadCollectionSchema(&buf)
		require.NoError(t, err)
		assert.Equal(t, cs, back)
	}
}

func TestDescribeFieldTypes(t *testing.T) {
	fts := bookSchema(t, true)
	cs := DescribeFieldTypes("books", fts)

	var buf bytes.Buffer
	require.NoError(t, WriteCollectionSchema(&buf, cs))
	back, err := ReadCollectionSchema(&buf)
	require.NoError(t, err)

	converted, err := ConvertCollectionSchema(back)
	require.NoError(t, err)
	assert.Equal(t, fts, converted)
}

func TestReadCollectionSchemaRejectsFieldsData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInsertRequest(&buf, allTypesRequest(t)))
	_, err := ReadCollectionSchema(&buf)
	requireParamError(t, err, ErrTypeProtocol)

	err = WriteCollectionSchema(&buf, nil)
	requireParamError(t, err, ErrTypeValue)
}
