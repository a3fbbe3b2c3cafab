// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import "math"

// Values is the column payload of a [Field]. It is a closed set of variants;
// the caller picks the variant when constructing a field, so a value of the
// wrong type cannot appear inside a column.
type Values interface {
	// Len returns the number of rows.
	Len() int
	// kind names the variant for error messages and seals the interface.
	kind() string
}

// Scalar column variants.
type (
	Int64s  []int64
	Int32s  []int32
	Int16s  []int16
	Int8s   []int8
	Bools   []bool
	Floats  []float32
	Doubles []float64
	Strings []string
)

// FloatVector is one dense float vector.
type FloatVector []float32

// BinaryVector is one bit-packed binary vector, eight dimensions per byte.
type BinaryVector []byte

// Vector column variants: one row per vector.
type (
	FloatVectors  []FloatVector
	BinaryVectors []BinaryVector
)

func (v Int64s) Len() int        { return len(v) }
func (v Int32s) Len() int        { return len(v) }
func (v Int16s) Len() int        { return len(v) }
func (v Int8s) Len() int         { return len(v) }
func (v Bools) Len() int         { return len(v) }
func (v Floats) Len() int        { return len(v) }
func (v Doubles) Len() int       { return len(v) }
func (v Strings) Len() int       { return len(v) }
func (v FloatVectors) Len() int  { return len(v) }
func (v BinaryVectors) Len() int { return len(v) }

func (Int64s) kind() string        { return "int64" }
func (Int32s) kind() string        { return "int32" }
func (Int16s) kind() string        { return "int16" }
func (Int8s) kind() string         { return "int8" }
func (Bools) kind() string         { return "bool" }
func (Floats) kind() string        { return "float32" }
func (Doubles) kind() string       { return "float64" }
func (Strings) kind() string       { return "string" }
func (FloatVectors) kind() string  { return "float vector" }
func (BinaryVectors) kind() string { return "binary vector" }

// Vector is a single search target: either a [FloatVector] or a
// [BinaryVector].
type Vector interface {
	// Dim returns the vector dimension. Binary vectors count bits.
	Dim() int
	placeholderType() PlaceholderType
}

func (v FloatVector) Dim() int  { return len(v) }
func (v BinaryVector) Dim() int { return len(v) * 8 }

func (FloatVector) placeholderType() PlaceholderType  { return PlaceholderTypeFloatVector }
func (BinaryVector) placeholderType() PlaceholderType { return PlaceholderTypeBinaryVector }

// acceptsValues reports whether values may be stored in a column declared as
// dataType. Int8/Int16/Int32 columns accept any of the narrow integer
// variants; range is checked at marshal time.
func acceptsValues(dataType DataType, values Values) bool {
	switch values.(type) {
	case Int64s:
		return dataType == DataTypeInt64
	case Int32s, Int16s, Int8s:
		return dataType == DataTypeInt32 || dataType == DataTypeInt16 || dataType == DataTypeInt8
	case Bools:
		return dataType == DataTypeBool
	case Floats:
		return dataType == DataTypeFloat
	case Doubles:
		return dataType == DataTypeDouble
	case Strings:
		return dataType == DataTypeString || dataType == DataTypeVarChar
	case FloatVectors:
		return dataType == DataTypeFloatVector
	case BinaryVectors:
		return dataType == DataTypeBinaryVector
	default:
		return false
	}
}

// intRange returns the inclusive bounds of a narrow integer data type.
func intRange(dataType DataType) (int64, int64) {
	switch dataType {
	case DataTypeInt8:
		return math.MinInt8, math.MaxInt8
	case DataTypeInt16:
		return math.MinInt16, math.MaxInt16
	default:
		return math.MinInt32, math.MaxInt32
	}
}
