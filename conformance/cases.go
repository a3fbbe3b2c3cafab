// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Query-farm/vdbparam/vdbparam"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/cases.yaml
var builtinCases []byte

// suite is the top-level document of a case file.
type suite struct {
	Cases []Case `yaml:"cases"`
}

// Builtin returns the embedded conformance suite.
func Builtin() ([]Case, error) {
	return Load(bytes.NewReader(builtinCases))
}

// Load reads a case file. Unknown keys are rejected.
func Load(r io.Reader) ([]Case, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var s suite
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding conformance cases: %w", err)
	}
	for i, c := range s.Cases {
		if c.Name == "" {
			return nil, fmt.Errorf("case %d has no name", i)
		}
	}
	return s.Cases, nil
}

// FieldTypes builds the collection schema of the case.
func (c *Case) FieldTypes() ([]vdbparam.FieldType, error) {
	out := make([]vdbparam.FieldType, 0, len(c.Schema))
	for _, sf := range c.Schema {
		dt, err := parseType(sf.Type)
		if err != nil {
			return nil, err
		}
		b := vdbparam.NewFieldType().
			WithName(sf.Name).
			WithDataType(dt).
			WithPrimaryKey(sf.PrimaryKey).
			WithAutoID(sf.AutoID)
		if sf.Dim != 0 {
			b = b.WithDimension(sf.Dim)
		}
		ft, err := b.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, ft)
	}
	return out, nil
}

// Build constructs the insert parameters of the case.
func (c *Case) Build() (*vdbparam.InsertParam, error) {
	b := vdbparam.NewInsertParam().WithCollectionName(c.Collection)
	if c.Partition != "" {
		b = b.WithPartitionName(c.Partition)
	}
	for i := range c.Fields {
		fv := &c.Fields[i]
		dt, err := parseType(fv.Type)
		if err != nil {
			return nil, err
		}
		values, err := fv.values(dt)
		if err != nil {
			return nil, err
		}
		f, err := vdbparam.NewField(fv.Name, dt, values)
		if err != nil {
			return nil, err
		}
		b = b.AddField(f)
	}
	return b.Build()
}

// Run builds the case and converts it with conv. Any failure along the way
// is the outcome of the case and is returned as the error.
func (c *Case) Run(ctx context.Context, conv *vdbparam.Converter) (*vdbparam.InsertRequest, error) {
	fieldTypes, err := c.FieldTypes()
	if err != nil {
		return nil, err
	}
	param, err := c.Build()
	if err != nil {
		return nil, err
	}
	return conv.Insert(ctx, param, fieldTypes)
}

// Check compares an outcome of [Case.Run] with the case's expectation.
func (c *Case) Check(req *vdbparam.InsertRequest, runErr error) error {
	exp := c.Expect
	if exp.ErrorType != "" {
		if runErr == nil {
			return fmt.Errorf("case %q: expected %s, conversion succeeded", c.Name, exp.ErrorType)
		}
		var pe *vdbparam.ParamError
		if !errors.As(runErr, &pe) {
			return fmt.Errorf("case %q: expected %s, got non-parameter error: %w", c.Name, exp.ErrorType, runErr)
		}
		if pe.Type != exp.ErrorType {
			return fmt.Errorf("case %q: expected %s, got %s: %s", c.Name, exp.ErrorType, pe.Type, pe.Message)
		}
		if exp.Error != "" && !strings.Contains(pe.Message, exp.Error) {
			return fmt.Errorf("case %q: error %q does not contain %q", c.Name, pe.Message, exp.Error)
		}
		return nil
	}

	if runErr != nil {
		return fmt.Errorf("case %q: unexpected error: %w", c.Name, runErr)
	}
	if exp.NumRows != 0 && req.NumRows != exp.NumRows {
		return fmt.Errorf("case %q: num_rows %d, expected %d", c.Name, req.NumRows, exp.NumRows)
	}
	if exp.Fields != nil {
		got := make([]string, len(req.FieldsData))
		for i, fd := range req.FieldsData {
			got[i] = fd.FieldName
		}
		if strings.Join(got, ",") != strings.Join(exp.Fields, ",") {
			return fmt.Errorf("case %q: fields %v, expected %v", c.Name, got, exp.Fields)
		}
	}
	for name, dim := range exp.Dims {
		fd := findField(req, name)
		if fd == nil || fd.Vectors == nil {
			return fmt.Errorf("case %q: no vector field %q in request", c.Name, name)
		}
		if fd.Vectors.Dim != dim {
			return fmt.Errorf("case %q: field %q dim %d, expected %d", c.Name, name, fd.Vectors.Dim, dim)
		}
	}
	return nil
}

func findField(req *vdbparam.InsertRequest, name string) *vdbparam.FieldData {
	for _, fd := range req.FieldsData {
		if fd.FieldName == name {
			return fd
		}
	}
	return nil
}
