// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

// MarshalField converts one column of caller data into its wire record.
//
// Vector columns are flattened row-major. The dimension of a float vector
// column is the common row length; the dimension of a binary vector column
// is the common row byte length times eight. Int8, Int16 and Int32 columns
// are all widened into a single 32-bit array while the record keeps the
// declared data type. Any variant that does not match dataType is rejected
// rather than coerced.
func MarshalField(name string, dataType DataType, values Values) (*FieldData, error) {
	if values == nil {
		return nil, newValueError(name, "field %q: cannot generate field data from nil values", name)
	}

	switch dataType {
	case DataTypeFloatVector:
		return marshalFloatVectors(name, values)
	case DataTypeBinaryVector:
		return marshalBinaryVectors(name, values)
	case DataTypeInt64:
		v, ok := values.(Int64s)
		if !ok {
			return nil, mismatch(name, dataType, values)
		}
		return scalarData(name, dataType, &ScalarField{Kind: ScalarLong, Longs: append([]int64{}, v...)}), nil
	case DataTypeInt32, DataTypeInt16, DataTypeInt8:
		ints, err := widenInts(name, dataType, values)
		if err != nil {
			return nil, err
		}
		return scalarData(name, dataType, &ScalarField{Kind: ScalarInt, Ints: ints}), nil
	case DataTypeBool:
		v, ok := values.(Bools)
		if !ok {
			return nil, mismatch(name, dataType, values)
		}
		return scalarData(name, dataType, &ScalarField{Kind: ScalarBool, Bools: append([]bool{}, v...)}), nil
	case DataTypeFloat:
		v, ok := values.(Floats)
		if !ok {
			return nil, mismatch(name, dataType, values)
		}
		return scalarData(name, dataType, &ScalarField{Kind: ScalarFloat, Floats: append([]float32{}, v...)}), nil
	case DataTypeDouble:
		v, ok := values.(Doubles)
		if !ok {
			return nil, mismatch(name, dataType, values)
		}
		return scalarData(name, dataType, &ScalarField{Kind: ScalarDouble, Doubles: append([]float64{}, v...)}), nil
	case DataTypeString, DataTypeVarChar:
		v, ok := values.(Strings)
		if !ok {
			return nil, mismatch(name, dataType, values)
		}
		return scalarData(name, dataType, &ScalarField{Kind: ScalarString, Strings: append([]string{}, v...)}), nil
	default:
		return nil, newTypeError(name, "field %q: unsupported data type %s", name, dataType)
	}
}

// MarshalFields converts a list of fields in order.
func MarshalFields(fields []*Field) ([]*FieldData, error) {
	out := make([]*FieldData, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			return nil, newValueError("", "field cannot be nil")
		}
		fd, err := MarshalField(f.Name(), f.DataType(), f.Values())
		if err != nil {
			return nil, err
		}
		out = append(out, fd)
	}
	return out, nil
}

func marshalFloatVectors(name string, values Values) (*FieldData, error) {
	rows, ok := values.(FloatVectors)
	if !ok {
		return nil, newTypeError(name, "field %q: the type of FloatVector must be float vectors, got %s values", name, values.kind())
	}
	if len(rows) == 0 {
		return nil, newValueError(name, "field %q: float vector field has no rows", name)
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, newValueError(name, "field %q: float vector dimension cannot be zero", name)
	}
	flat := make([]float32, 0, dim*len(rows))
	for i, row := range rows {
		if len(row) != dim {
			return nil, newValueError(name, "field %q: row %d has dimension %d, expected %d", name, i, len(row), dim)
		}
		flat = append(flat, row...)
	}
	return &FieldData{
		FieldName: name,
		Type:      DataTypeFloatVector,
		Vectors:   &VectorField{Dim: int64(len(flat) / len(rows)), FloatVector: flat},
	}, nil
}

func marshalBinaryVectors(name string, values Values) (*FieldData, error) {
	rows, ok := values.(BinaryVectors)
	if !ok {
		return nil, newTypeError(name, "field %q: the type of BinaryVector must be binary vectors, got %s values", name, values.kind())
	}
	if len(rows) == 0 {
		return nil, newValueError(name, "field %q: binary vector field has no rows", name)
	}
	rowBytes := len(rows[0])
	if rowBytes == 0 {
		return nil, newValueError(name, "field %q: binary vector dimension cannot be zero", name)
	}
	buf := make([]byte, 0, rowBytes*len(rows))
	for i, row := range rows {
		if len(row) != rowBytes {
			return nil, newValueError(name, "field %q: row %d has %d bytes, expected %d", name, i, len(row), rowBytes)
		}
		buf = append(buf, row...)
	}
	return &FieldData{
		FieldName: name,
		Type:      DataTypeBinaryVector,
		Vectors:   &VectorField{Dim: int64(rowBytes * 8), BinaryVector: buf},
	}, nil
}

// widenInts copies any narrow integer variant into an int32 slice, checking
// that every value fits the declared width.
func widenInts(name string, dataType DataType, values Values) ([]int32, error) {
	lo, hi := intRange(dataType)
	out := make([]int32, 0, values.Len())
	check := func(i int, v int64) error {
		if v < lo || v > hi {
			return newValueError(name, "field %q: value %d at row %d overflows %s", name, v, i, dataType)
		}
		return nil
	}

	switch v := values.(type) {
	case Int32s:
		for i, x := range v {
			if err := check(i, int64(x)); err != nil {
				return nil, err
			}
			out = append(out, x)
		}
	case Int16s:
		for i, x := range v {
			if err := check(i, int64(x)); err != nil {
				return nil, err
			}
			out = append(out, int32(x))
		}
	case Int8s:
		for _, x := range v {
			out = append(out, int32(x))
		}
	default:
		return nil, mismatch(name, dataType, values)
	}
	return out, nil
}

func scalarData(name string, dataType DataType, s *ScalarField) *FieldData {
	return &FieldData{FieldName: name, Type: dataType, Scalars: s}
}

func mismatch(name string, dataType DataType, values Values) error {
	return newTypeError(name, "field %q: %s values cannot be stored as %s", name, values.kind(), dataType)
}
