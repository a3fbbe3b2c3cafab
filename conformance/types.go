// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"

	"github.com/Query-farm/vdbparam/vdbparam"
)

// Case is one conformance scenario.
type Case struct {
	Name       string        `yaml:"name"`
	Collection string        `yaml:"collection"`
	Partition  string        `yaml:"partition,omitempty"`
	Schema     []SchemaField `yaml:"schema"`
	Fields     []FieldValues `yaml:"fields"`
	Expect     Expect        `yaml:"expect"`
}

// SchemaField declares one field of the collection schema.
type SchemaField struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	PrimaryKey bool   `yaml:"primary_key,omitempty"`
	AutoID     bool   `yaml:"auto_id,omitempty"`
	Dim        int64  `yaml:"dim,omitempty"`
}

// FieldValues is one client-supplied column. Type is the declared data
// type; Kind optionally forces the Go value variant, which defaults to the
// natural variant of Type. Exactly one value list is read, chosen by Kind.
type FieldValues struct {
	Name          string      `yaml:"name"`
	Type          string      `yaml:"type"`
	Kind          string      `yaml:"kind,omitempty"`
	Ints          []int64     `yaml:"ints,omitempty"`
	Floats        []float64   `yaml:"floats,omitempty"`
	Bools         []bool      `yaml:"bools,omitempty"`
	Strings       []string    `yaml:"strings,omitempty"`
	FloatVectors  [][]float32 `yaml:"float_vectors,omitempty"`
	BinaryVectors []string    `yaml:"binary_vectors,omitempty"` // hex, one row per entry
}

// Expect is the expected outcome of a case. An empty ErrorType means the
// conversion must succeed.
type Expect struct {
	ErrorType string           `yaml:"error_type,omitempty"`
	Error     string           `yaml:"error,omitempty"`
	NumRows   int64            `yaml:"num_rows,omitempty"`
	Fields    []string         `yaml:"fields,omitempty"`
	Dims      map[string]int64 `yaml:"dims,omitempty"`
}

// Value kinds accepted in FieldValues.Kind.
const (
	KindInt64        = "int64"
	KindInt32        = "int32"
	KindInt16        = "int16"
	KindInt8         = "int8"
	KindBool         = "bool"
	KindFloat        = "float"
	KindDouble       = "double"
	KindString       = "string"
	KindFloatVector  = "float_vector"
	KindBinaryVector = "binary_vector"
)

func defaultKind(dt vdbparam.DataType) string {
	switch dt {
	case vdbparam.DataTypeInt64:
		return KindInt64
	case vdbparam.DataTypeInt32:
		return KindInt32
	case vdbparam.DataTypeInt16:
		return KindInt16
	case vdbparam.DataTypeInt8:
		return KindInt8
	case vdbparam.DataTypeBool:
		return KindBool
	case vdbparam.DataTypeFloat:
		return KindFloat
	case vdbparam.DataTypeDouble:
		return KindDouble
	case vdbparam.DataTypeString, vdbparam.DataTypeVarChar:
		return KindString
	case vdbparam.DataTypeFloatVector:
		return KindFloatVector
	case vdbparam.DataTypeBinaryVector:
		return KindBinaryVector
	default:
		return ""
	}
}

// parseType accepts a protocol type name or a raw enum number, so cases can
// exercise unrecognized types.
func parseType(name string) (vdbparam.DataType, error) {
	if n, err := strconv.ParseInt(name, 10, 32); err == nil {
		return vdbparam.DataType(n), nil
	}
	return vdbparam.ParseDataType(name)
}

// narrowInts converts YAML integers to a narrow Go carrier. Values that do
// not fit the carrier are reported instead of wrapping.
func narrowInts[T int8 | int16 | int32](field string, in []int64, lo, hi int64, kind string) ([]T, error) {
	out := make([]T, len(in))
	for i, v := range in {
		if v < lo || v > hi {
			return nil, fmt.Errorf("field %q: value %d at row %d does not fit %s", field, v, i, kind)
		}
		out[i] = T(v)
	}
	return out, nil
}

// values builds the Go value variant for the column.
func (f *FieldValues) values(dt vdbparam.DataType) (vdbparam.Values, error) {
	kind := f.Kind
	if kind == "" {
		kind = defaultKind(dt)
	}
	switch kind {
	case KindInt64:
		return vdbparam.Int64s(append([]int64{}, f.Ints...)), nil
	case KindInt32:
		out, err := narrowInts[int32](f.Name, f.Ints, math.MinInt32, math.MaxInt32, kind)
		if err != nil {
			return nil, err
		}
		return vdbparam.Int32s(out), nil
	case KindInt16:
		out, err := narrowInts[int16](f.Name, f.Ints, math.MinInt16, math.MaxInt16, kind)
		if err != nil {
			return nil, err
		}
		return vdbparam.Int16s(out), nil
	case KindInt8:
		out, err := narrowInts[int8](f.Name, f.Ints, math.MinInt8, math.MaxInt8, kind)
		if err != nil {
			return nil, err
		}
		return vdbparam.Int8s(out), nil
	case KindBool:
		return vdbparam.Bools(append([]bool{}, f.Bools...)), nil
	case KindFloat:
		out := make(vdbparam.Floats, len(f.Floats))
		for i, v := range f.Floats {
			out[i] = float32(v)
		}
		return out, nil
	case KindDouble:
		return vdbparam.Doubles(append([]float64{}, f.Floats...)), nil
	case KindString:
		return vdbparam.Strings(append([]string{}, f.Strings...)), nil
	case KindFloatVector:
		out := make(vdbparam.FloatVectors, len(f.FloatVectors))
		for i, row := range f.FloatVectors {
			out[i] = append(vdbparam.FloatVector{}, row...)
		}
		return out, nil
	case KindBinaryVector:
		out := make(vdbparam.BinaryVectors, len(f.BinaryVectors))
		for i, row := range f.BinaryVectors {
			b, err := hex.DecodeString(row)
			if err != nil {
				return nil, fmt.Errorf("field %q row %d: %w", f.Name, i, err)
			}
			out[i] = b
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q: no value kind for type %s", f.Name, dt)
	}
}
