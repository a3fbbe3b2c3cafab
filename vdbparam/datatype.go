// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import "fmt"

// DataType is the column type tag shared by the client and the remote
// service. Numeric values match the remote protocol's enumeration.
type DataType int32

const (
	DataTypeNone         DataType = 0
	DataTypeBool         DataType = 1
	DataTypeInt8         DataType = 2
	DataTypeInt16        DataType = 3
	DataTypeInt32        DataType = 4
	DataTypeInt64        DataType = 5
	DataTypeFloat        DataType = 10
	DataTypeDouble       DataType = 11
	DataTypeString       DataType = 20
	DataTypeVarChar      DataType = 21
	DataTypeBinaryVector DataType = 100
	DataTypeFloatVector  DataType = 101
)

var dataTypeNames = map[DataType]string{
	DataTypeNone:         "None",
	DataTypeBool:         "Bool",
	DataTypeInt8:         "Int8",
	DataTypeInt16:        "Int16",
	DataTypeInt32:        "Int32",
	DataTypeInt64:        "Int64",
	DataTypeFloat:        "Float",
	DataTypeDouble:       "Double",
	DataTypeString:       "String",
	DataTypeVarChar:      "VarChar",
	DataTypeBinaryVector: "BinaryVector",
	DataTypeFloatVector:  "FloatVector",
}

var dataTypeValues = func() map[string]DataType {
	m := make(map[string]DataType, len(dataTypeNames))
	for dt, name := range dataTypeNames {
		m[name] = dt
	}
	return m
}()

// String returns the protocol name of the data type, or "Unrecognized(n)"
// for values outside the enumeration.
func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unrecognized(%d)", int32(t))
}

// IsValid reports whether t names a concrete column type. None and
// unrecognized values are not valid.
func (t DataType) IsValid() bool {
	_, ok := dataTypeNames[t]
	return ok && t != DataTypeNone
}

// IsVector reports whether t is one of the fixed-width vector types.
func (t DataType) IsVector() bool {
	return t == DataTypeFloatVector || t == DataTypeBinaryVector
}

// ParseDataType looks up a data type by its protocol name.
func ParseDataType(name string) (DataType, error) {
	dt, ok := dataTypeValues[name]
	if !ok {
		return DataTypeNone, newTypeError("", "unknown data type %q", name)
	}
	return dt, nil
}

// MsgType identifies the request kind carried in a message base.
type MsgType int32

const (
	MsgTypeUndefined MsgType = 0
	MsgTypeInsert    MsgType = 400
	MsgTypeSearch    MsgType = 500
	MsgTypeRetrieve  MsgType = 506
)

func (t MsgType) String() string {
	switch t {
	case MsgTypeInsert:
		return "Insert"
	case MsgTypeSearch:
		return "Search"
	case MsgTypeRetrieve:
		return "Retrieve"
	case MsgTypeUndefined:
		return "Undefined"
	default:
		return fmt.Sprintf("MsgType(%d)", int32(t))
	}
}

// DslType selects how a search filter is interpreted by the service.
type DslType int32

const (
	// DslTypeDsl is the legacy string DSL. It is never produced here.
	DslTypeDsl DslType = 0
	// DslTypeBoolExprV1 is the boolean expression filter language.
	DslTypeBoolExprV1 DslType = 1
)

// PlaceholderType tags the vectors carried in a placeholder value.
type PlaceholderType int32

const (
	PlaceholderTypeNone         PlaceholderType = 0
	PlaceholderTypeBinaryVector PlaceholderType = 100
	PlaceholderTypeFloatVector  PlaceholderType = 101
)

func (t PlaceholderType) String() string {
	switch t {
	case PlaceholderTypeNone:
		return "None"
	case PlaceholderTypeBinaryVector:
		return "BinaryVector"
	case PlaceholderTypeFloatVector:
		return "FloatVector"
	default:
		return fmt.Sprintf("PlaceholderType(%d)", int32(t))
	}
}
