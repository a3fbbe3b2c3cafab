package vdbparam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalInvertsMarshal(t *testing.T) {
	fields := []*Field{
		MustField("i64", DataTypeInt64, Int64s{1, -2}),
		MustField("i32", DataTypeInt32, Int32s{3, -4}),
		MustField("i16", DataTypeInt16, Int16s{5, -6}),
		MustField("i8", DataTypeInt8, Int8s{7, -8}),
		MustField("b", DataTypeBool, Bools{true, false}),
		MustField("f", DataTypeFloat, Floats{1.5, 2.5}),
		MustField("d", DataTypeDouble, Doubles{3.5, 4.5}),
		MustField("s", DataTypeString, Strings{"x", "y"}),
		MustField("vc", DataTypeVarChar, Strings{"p", "q"}),
		MustField("fv", DataTypeFloatVector, FloatVectors{{1, 2, 3}, {4, 5, 6}}),
		MustField("bv", DataTypeBinaryVector, BinaryVectors{{0x01}, {0x80}}),
	}
	fds, err := MarshalFields(fields)
	require.NoError(t, err)

	back, err := UnmarshalFields(fds)
	require.NoError(t, err)
	require.Len(t, back, len(fields))
	for i, f := range fields {
		assert.Equal(t, f.Name(), back[i].Name())
		assert.Equal(t, f.DataType(), back[i].DataType())
		assert.Equal(t, f.Values(), back[i].Values(), f.Name())
	}
}

func TestUnmarshalNarrowOverflow(t *testing.T) {
	_, err := UnmarshalField(&FieldData{
		FieldName: "small",
		Type:      DataTypeInt8,
		Scalars:   &ScalarField{Kind: ScalarInt, Ints: []int32{128}},
	})
	requireParamError(t, err, ErrTypeProtocol)

	_, err = UnmarshalField(&FieldData{
		FieldName: "medium",
		Type:      DataTypeInt16,
		Scalars:   &ScalarField{Kind: ScalarInt, Ints: []int32{-40000}},
	})
	requireParamError(t, err, ErrTypeProtocol)
}

func TestUnmarshalMalformed(t *testing.T) {
	tests := []struct {
		name string
		fd   *FieldData
		want string
	}{
		{"nil", nil, ErrTypeProtocol},
		{"unrecognized", &FieldData{FieldName: "x", Type: DataType(77)}, ErrTypeType},
		{"no scalars", &FieldData{FieldName: "x", Type: DataTypeInt64}, ErrTypeProtocol},
		{"wrong kind", &FieldData{FieldName: "x", Type: DataTypeInt64,
			Scalars: &ScalarField{Kind: ScalarInt, Ints: []int32{1}}}, ErrTypeProtocol},
		{"no vectors", &FieldData{FieldName: "x", Type: DataTypeFloatVector}, ErrTypeProtocol},
		{"ragged floats", &FieldData{FieldName: "x", Type: DataTypeFloatVector,
			Vectors: &VectorField{Dim: 2, FloatVector: []float32{1, 2, 3}}}, ErrTypeProtocol},
		{"bad binary dim", &FieldData{FieldName: "x", Type: DataTypeBinaryVector,
			Vectors: &VectorField{Dim: 12, BinaryVector: []byte{1, 2}}}, ErrTypeProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalField(tt.fd)
			requireParamError(t, err, tt.want)
		})
	}
}
