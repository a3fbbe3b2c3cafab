package vdbparam

// UnmarshalField converts a wire record, typically from a query or search
// response, back into a client field. It is the inverse of [MarshalField]:
// vector payloads are split into rows by dimension and 32-bit integer arrays
// are narrowed back to the declared width.
func UnmarshalField(fd *FieldData) (*Field, error) {
	if fd == nil {
		return nil, newProtocolError("field data cannot be nil")
	}
	name := fd.FieldName

	if fd.Type.IsVector() {
		if fd.Vectors == nil {
			return nil, newProtocolError("field %q: %s record has no vector payload", name, fd.Type)
		}
		if fd.Type == DataTypeFloatVector {
			rows, err := splitFloatVectors(name, fd.Vectors)
			if err != nil {
				return nil, err
			}
			return NewField(name, fd.Type, rows)
		}
		rows, err := splitBinaryVectors(name, fd.Vectors)
		if err != nil {
			return nil, err
		}
		return NewField(name, fd.Type, rows)
	}

	if !fd.Type.IsValid() {
		return nil, newTypeError(name, "field %q: unsupported data type %s", name, fd.Type)
	}
	s := fd.Scalars
	if s == nil {
		return nil, newProtocolError("field %q: %s record has no scalar payload", name, fd.Type)
	}
	want := scalarKindFor(fd.Type)
	if s.Kind != want {
		return nil, newProtocolError("field %q: %s record carries %s data, expected %s", name, fd.Type, s.Kind, want)
	}

	var values Values
	switch fd.Type {
	case DataTypeInt64:
		values = Int64s(append([]int64{}, s.Longs...))
	case DataTypeInt32:
		values = Int32s(append([]int32{}, s.Ints...))
	case DataTypeInt16:
		out := make(Int16s, len(s.Ints))
		for i, v := range s.Ints {
			if v < -1<<15 || v > 1<<15-1 {
				return nil, newProtocolError("field %q: value %d at row %d overflows Int16", name, v, i)
			}
			out[i] = int16(v)
		}
		values = out
	case DataTypeInt8:
		out := make(Int8s, len(s.Ints))
		for i, v := range s.Ints {
			if v < -1<<7 || v > 1<<7-1 {
				return nil, newProtocolError("field %q: value %d at row %d overflows Int8", name, v, i)
			}
			out[i] = int8(v)
		}
		values = out
	case DataTypeBool:
		values = Bools(append([]bool{}, s.Bools...))
	case DataTypeFloat:
		values = Floats(append([]float32{}, s.Floats...))
	case DataTypeDouble:
		values = Doubles(append([]float64{}, s.Doubles...))
	case DataTypeString, DataTypeVarChar:
		values = Strings(append([]string{}, s.Strings...))
	}
	return NewField(name, fd.Type, values)
}

// UnmarshalFields converts a list of wire records in order.
func UnmarshalFields(fds []*FieldData) ([]*Field, error) {
	out := make([]*Field, 0, len(fds))
	for _, fd := range fds {
		f, err := UnmarshalField(fd)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func splitFloatVectors(name string, v *VectorField) (FloatVectors, error) {
	dim := int(v.Dim)
	if dim <= 0 {
		return nil, newProtocolError("field %q: invalid float vector dimension %d", name, v.Dim)
	}
	if len(v.FloatVector)%dim != 0 {
		return nil, newProtocolError("field %q: %d floats is not a multiple of dimension %d", name, len(v.FloatVector), dim)
	}
	rows := make(FloatVectors, 0, len(v.FloatVector)/dim)
	for off := 0; off < len(v.FloatVector); off += dim {
		rows = append(rows, append(FloatVector{}, v.FloatVector[off:off+dim]...))
	}
	return rows, nil
}

func splitBinaryVectors(name string, v *VectorField) (BinaryVectors, error) {
	if v.Dim <= 0 || v.Dim%8 != 0 {
		return nil, newProtocolError("field %q: invalid binary vector dimension %d", name, v.Dim)
	}
	rowBytes := int(v.Dim / 8)
	if len(v.BinaryVector)%rowBytes != 0 {
		return nil, newProtocolError("field %q: %d bytes is not a multiple of row size %d", name, len(v.BinaryVector), rowBytes)
	}
	rows := make(BinaryVectors, 0, len(v.BinaryVector)/rowBytes)
	for off := 0; off < len(v.BinaryVector); off += rowBytes {
		rows = append(rows, append(BinaryVector{}, v.BinaryVector[off:off+rowBytes]...))
	}
	return rows, nil
}

// scalarKindFor returns the wire array a scalar data type is stored in.
func scalarKindFor(dataType DataType) ScalarKind {
	switch dataType {
	case DataTypeInt64:
		return ScalarLong
	case DataTypeInt32, DataTypeInt16, DataTypeInt8:
		return ScalarInt
	case DataTypeBool:
		return ScalarBool
	case DataTypeFloat:
		return ScalarFloat
	case DataTypeDouble:
		return ScalarDouble
	case DataTypeString, DataTypeVarChar:
		return ScalarString
	default:
		return ScalarNone
	}
}
