package vdbparam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireParamError(t *testing.T, err error, errType string) *ParamError {
	t.Helper()
	require.Error(t, err)
	pe, ok := err.(*ParamError)
	require.Truef(t, ok, "expected *ParamError, got %T: %v", err, err)
	assert.Equal(t, errType, pe.Type, pe.Message)
	return pe
}

func TestMarshalNarrowIntsWiden(t *testing.T) {
	tests := []struct {
		dataType DataType
		values   Values
		want     []int32
	}{
		{DataTypeInt8, Int8s{-128, 0, 127}, []int32{-128, 0, 127}},
		{DataTypeInt8, Int32s{-3, 4}, []int32{-3, 4}},
		{DataTypeInt16, Int8s{1, 2, 3}, []int32{1, 2, 3}},
		{DataTypeInt16, Int16s{-32768, 32767}, []int32{-32768, 32767}},
		{DataTypeInt32, Int16s{-5, 7}, []int32{-5, 7}},
		{DataTypeInt32, Int32s{1 << 30}, []int32{1 << 30}},
	}
	for _, tt := range tests {
		t.Run(tt.dataType.String()+"/"+tt.values.kind(), func(t *testing.T) {
			fd, err := MarshalField("n", tt.dataType, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.dataType, fd.Type)
			require.NotNil(t, fd.Scalars)
			assert.Equal(t, ScalarInt, fd.Scalars.Kind)
			assert.Equal(t, tt.want, fd.Scalars.Ints)
			assert.Nil(t, fd.Vectors)
		})
	}
}

func TestMarshalNarrowIntOverflow(t *testing.T) {
	_, err := MarshalField("small", DataTypeInt8, Int16s{1, 300})
	pe := requireParamError(t, err, ErrTypeValue)
	assert.Contains(t, pe.Message, "overflows Int8")

	_, err = MarshalField("medium", DataTypeInt16, Int32s{70000})
	requireParamError(t, err, ErrTypeValue)
}

func TestMarshalFloatVectors(t *testing.T) {
	rows := FloatVectors{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}
	fd, err := MarshalField("vec", DataTypeFloatVector, rows)
	require.NoError(t, err)
	require.NotNil(t, fd.Vectors)
	assert.Nil(t, fd.Scalars)
	assert.EqualValues(t, 4, fd.Vectors.Dim)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, fd.Vectors.FloatVector)
	assert.Equal(t, 3, fd.RowCount())

	// The flat buffer is a copy.
	rows[0][0] = 100
	assert.EqualValues(t, 1, fd.Vectors.FloatVector[0])
}

func TestMarshalFloatVectorErrors(t *testing.T) {
	_, err := MarshalField("vec", DataTypeFloatVector, FloatVectors{{1, 2}, {3}})
	requireParamError(t, err, ErrTypeValue)

	_, err = MarshalField("vec", DataTypeFloatVector, FloatVectors{})
	requireParamError(t, err, ErrTypeValue)

	_, err = MarshalField("vec", DataTypeFloatVector, FloatVectors{{}})
	requireParamError(t, err, ErrTypeValue)

	_, err = MarshalField("vec", DataTypeFloatVector, Floats{1, 2})
	requireParamError(t, err, ErrTypeType)
}

func TestMarshalBinaryVectors(t *testing.T) {
	fd, err := MarshalField("bits", DataTypeBinaryVector, BinaryVectors{{0xff, 0x00}, {0x0f, 0xf0}})
	require.NoError(t, err)
	assert.EqualValues(t, 16, fd.Vectors.Dim)
	assert.Equal(t, []byte{0xff, 0x00, 0x0f, 0xf0}, fd.Vectors.BinaryVector)
	assert.Equal(t, 2, fd.RowCount())
}

func TestMarshalBinaryVectorsRaggedRowsFail(t *testing.T) {
	_, err := MarshalField("bits", DataTypeBinaryVector, BinaryVectors{{0xff, 0x00}, {0x0f}})
	pe := requireParamError(t, err, ErrTypeValue)
	assert.Equal(t, "bits", pe.Field)
	assert.Contains(t, pe.Message, "row 1 has 1 bytes, expected 2")
}

func TestMarshalScalars(t *testing.T) {
	tests := []struct {
		name   string
		dt     DataType
		values Values
		check  func(t *testing.T, s *ScalarField)
	}{
		{"int64", DataTypeInt64, Int64s{1, 2}, func(t *testing.T, s *ScalarField) {
			assert.Equal(t, ScalarLong, s.Kind)
			assert.Equal(t, []int64{1, 2}, s.Longs)
		}},
		{"bool", DataTypeBool, Bools{true, false}, func(t *testing.T, s *ScalarField) {
			assert.Equal(t, []bool{true, false}, s.Bools)
		}},
		{"float", DataTypeFloat, Floats{1.5}, func(t *testing.T, s *ScalarField) {
			assert.Equal(t, []float32{1.5}, s.Floats)
		}},
		{"double", DataTypeDouble, Doubles{2.25}, func(t *testing.T, s *ScalarField) {
			assert.Equal(t, []float64{2.25}, s.Doubles)
		}},
		{"string", DataTypeString, Strings{"a"}, func(t *testing.T, s *ScalarField) {
			assert.Equal(t, []string{"a"}, s.Strings)
		}},
		{"varchar", DataTypeVarChar, Strings{"b", "c"}, func(t *testing.T, s *ScalarField) {
			assert.Equal(t, ScalarString, s.Kind)
			assert.Equal(t, 2, s.Len())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd, err := MarshalField(tt.name, tt.dt, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.dt, fd.Type)
			require.NotNil(t, fd.Scalars)
			tt.check(t, fd.Scalars)
		})
	}
}

func TestMarshalRejectsMismatchedVariant(t *testing.T) {
	_, err := MarshalField("id", DataTypeInt64, Int32s{1})
	pe := requireParamError(t, err, ErrTypeType)
	assert.Contains(t, pe.Message, "int32 values cannot be stored as Int64")

	_, err = MarshalField("s", DataTypeString, Int64s{1})
	requireParamError(t, err, ErrTypeType)
}

func TestMarshalUnrecognizedAlwaysFails(t *testing.T) {
	for _, v := range []Values{Int64s{1}, Strings{"x"}, FloatVectors{{1}}} {
		_, err := MarshalField("x", DataType(999), v)
		requireParamError(t, err, ErrTypeType)
		_, err = MarshalField("x", DataTypeNone, v)
		requireParamError(t, err, ErrTypeType)
	}
}

func TestMarshalNilValuesAlwaysFails(t *testing.T) {
	for dt := range dataTypeNames {
		_, err := MarshalField("x", dt, nil)
		requireParamError(t, err, ErrTypeValue)
	}
}

func TestMarshalFields(t *testing.T) {
	fds, err := MarshalFields([]*Field{
		MustField("id", DataTypeInt64, Int64s{1}),
		MustField("v", DataTypeFloatVector, FloatVectors{{1, 2}}),
	})
	require.NoError(t, err)
	require.Len(t, fds, 2)
	assert.Equal(t, "id", fds[0].FieldName)
	assert.Equal(t, "v", fds[1].FieldName)

	_, err = MarshalFields([]*Field{nil})
	requireParamError(t, err, ErrTypeValue)
}

func TestNewFieldValidation(t *testing.T) {
	_, err := NewField(" ", DataTypeInt64, Int64s{1})
	requireParamError(t, err, ErrTypeValue)

	_, err = NewField("x", DataTypeNone, Int64s{1})
	requireParamError(t, err, ErrTypeType)

	_, err = NewField("x", DataTypeInt64, nil)
	requireParamError(t, err, ErrTypeValue)

	_, err = NewField("x", DataTypeInt64, Strings{"1"})
	requireParamError(t, err, ErrTypeType)

	f, err := NewField("x", DataTypeInt8, Int32s{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, f.RowCount())

	assert.Panics(t, func() { MustField("", DataTypeInt64, Int64s{1}) })
}

func TestPayloadBytes(t *testing.T) {
	fd, err := MarshalField("v", DataTypeFloatVector, FloatVectors{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.EqualValues(t, 16, fd.PayloadBytes())

	fd, err = MarshalField("s", DataTypeVarChar, Strings{"ab", "cde"})
	require.NoError(t, err)
	assert.EqualValues(t, 5, fd.PayloadBytes())
}
