// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import (
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// VectorTag is the placeholder tag the service binds search vectors to.
const VectorTag = "$0"

// Protobuf field numbers of the placeholder messages.
const (
	placeholderGroupPlaceholders protowire.Number = 1

	placeholderValueTag    protowire.Number = 1
	placeholderValueType   protowire.Number = 2
	placeholderValueValues protowire.Number = 3
)

// PlaceholderValue holds the encoded search vectors of one kind.
type PlaceholderValue struct {
	Tag    string
	Type   PlaceholderType
	Values [][]byte
}

// PlaceholderGroup is the container of search target vectors. It travels
// inside a search request as an opaque protobuf-encoded blob.
type PlaceholderGroup struct {
	Placeholders []*PlaceholderValue
}

// Marshal encodes the group in protobuf wire format.
func (g *PlaceholderGroup) Marshal() []byte {
	var b []byte
	for _, p := range g.Placeholders {
		b = protowire.AppendTag(b, placeholderGroupPlaceholders, protowire.BytesType)
		b = protowire.AppendBytes(b, p.marshal())
	}
	return b
}

func (p *PlaceholderValue) marshal() []byte {
	var b []byte
	if p.Tag != "" {
		b = protowire.AppendTag(b, placeholderValueTag, protowire.BytesType)
		b = protowire.AppendString(b, p.Tag)
	}
	if p.Type != PlaceholderTypeNone {
		b = protowire.AppendTag(b, placeholderValueType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Type))
	}
	for _, v := range p.Values {
		b = protowire.AppendTag(b, placeholderValueValues, protowire.BytesType)
		b = protowire.AppendBytes(b, v)
	}
	return b
}

// DecodePlaceholderGroup parses a protobuf-encoded placeholder group. Unknown
// fields are skipped.
func DecodePlaceholderGroup(data []byte) (*PlaceholderGroup, error) {
	g := &PlaceholderGroup{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, newProtocolError("placeholder group: %v", protowire.ParseError(n))
		}
		data = data[n:]

		if num == placeholderGroupPlaceholders && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, newProtocolError("placeholder group: %v", protowire.ParseError(n))
			}
			pv, err := decodePlaceholderValue(raw)
			if err != nil {
				return nil, err
			}
			g.Placeholders = append(g.Placeholders, pv)
			data = data[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, newProtocolError("placeholder group: %v", protowire.ParseError(n))
		}
		data = data[n:]
	}
	return g, nil
}

func decodePlaceholderValue(data []byte) (*PlaceholderValue, error) {
	pv := &PlaceholderValue{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, newProtocolError("placeholder value: %v", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == placeholderValueTag && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, newProtocolError("placeholder value tag: %v", protowire.ParseError(n))
			}
			pv.Tag = s
			data = data[n:]
		case num == placeholderValueType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, newProtocolError("placeholder value type: %v", protowire.ParseError(n))
			}
			pv.Type = PlaceholderType(int32(v))
			data = data[n:]
		case num == placeholderValueValues && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, newProtocolError("placeholder value: %v", protowire.ParseError(n))
			}
			pv.Values = append(pv.Values, append([]byte{}, v...))
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, newProtocolError("placeholder value: %v", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return pv, nil
}

// encodeFloatVector serializes a float vector as little-endian float32s.
func encodeFloatVector(v FloatVector) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeFloatVector is the inverse of the float encoding used in placeholder
// values.
func DecodeFloatVector(b []byte) (FloatVector, error) {
	if len(b)%4 != 0 {
		return nil, newProtocolError("float vector blob of %d bytes is not a multiple of 4", len(b))
	}
	out := make(FloatVector, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}
