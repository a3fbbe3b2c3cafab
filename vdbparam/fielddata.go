// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

// ScalarKind tags which array of a [ScalarField] is populated.
type ScalarKind int

const (
	ScalarNone ScalarKind = iota
	ScalarLong
	ScalarInt
	ScalarBool
	ScalarFloat
	ScalarDouble
	ScalarString
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarLong:
		return "long"
	case ScalarInt:
		return "int"
	case ScalarBool:
		return "bool"
	case ScalarFloat:
		return "float"
	case ScalarDouble:
		return "double"
	case ScalarString:
		return "string"
	default:
		return "none"
	}
}

// ScalarField is the scalar payload of a [FieldData]. Exactly one array,
// selected by Kind, is populated.
type ScalarField struct {
	Kind    ScalarKind
	Longs   []int64
	Ints    []int32
	Bools   []bool
	Floats  []float32
	Doubles []float64
	Strings []string
}

// Len returns the number of values in the populated array.
func (s *ScalarField) Len() int {
	switch s.Kind {
	case ScalarLong:
		return len(s.Longs)
	case ScalarInt:
		return len(s.Ints)
	case ScalarBool:
		return len(s.Bools)
	case ScalarFloat:
		return len(s.Floats)
	case ScalarDouble:
		return len(s.Doubles)
	case ScalarString:
		return len(s.Strings)
	default:
		return 0
	}
}

// VectorField is the vector payload of a [FieldData]: a dimension and a
// row-major flat buffer. Dim counts bits for binary vectors.
type VectorField struct {
	Dim          int64
	FloatVector  []float32
	BinaryVector []byte
}

// FieldData is the wire record for one column. Exactly one of Scalars and
// Vectors is set.
type FieldData struct {
	FieldName string
	Type      DataType
	Scalars   *ScalarField
	Vectors   *VectorField
}

// RowCount returns the number of rows encoded in the record.
func (fd *FieldData) RowCount() int {
	switch {
	case fd.Scalars != nil:
		return fd.Scalars.Len()
	case fd.Vectors != nil && fd.Vectors.Dim > 0:
		if fd.Type == DataTypeBinaryVector {
			rowBytes := int(fd.Vectors.Dim / 8)
			if rowBytes == 0 {
				return 0
			}
			return len(fd.Vectors.BinaryVector) / rowBytes
		}
		return len(fd.Vectors.FloatVector) / int(fd.Vectors.Dim)
	default:
		return 0
	}
}

// PayloadBytes approximates the in-memory payload size of the record.
func (fd *FieldData) PayloadBytes() int64 {
	switch {
	case fd.Vectors != nil:
		return int64(len(fd.Vectors.FloatVector))*4 + int64(len(fd.Vectors.BinaryVector))
	case fd.Scalars != nil:
		s := fd.Scalars
		n := int64(len(s.Longs))*8 + int64(len(s.Ints))*4 + int64(len(s.Bools)) +
			int64(len(s.Floats))*4 + int64(len(s.Doubles))*8
		for _, str := range s.Strings {
			n += int64(len(str))
		}
		return n
	default:
		return 0
	}
}
