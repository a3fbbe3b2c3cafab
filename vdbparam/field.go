package vdbparam

// Field is one named, typed column of row data supplied by the caller.
type Field struct {
	name     string
	dataType DataType
	values   Values
}

// NewField constructs a field after checking that values is a variant the
// data type can hold. The values slice is retained, not copied; callers must
// not modify it afterwards.
func NewField(name string, dataType DataType, values Values) (*Field, error) {
	if err := checkNotBlank(name, "Field name"); err != nil {
		return nil, err
	}
	if !dataType.IsValid() {
		return nil, newTypeError(name, "field %q: unsupported data type %s", name, dataType)
	}
	if values == nil {
		return nil, newValueError(name, "field %q: values cannot be nil", name)
	}
	if !acceptsValues(dataType, values) {
		return nil, newTypeError(name, "field %q: %s values cannot be stored as %s", name, values.kind(), dataType)
	}
	return &Field{name: name, dataType: dataType, values: values}, nil
}

// MustField is like [NewField] but panics on error. Intended for tests and
// static fixtures.
func MustField(name string, dataType DataType, values Values) *Field {
	f, err := NewField(name, dataType, values)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Field) Name() string       { return f.name }
func (f *Field) DataType() DataType { return f.dataType }
func (f *Field) Values() Values     { return f.values }

// RowCount returns the number of rows in the field.
func (f *Field) RowCount() int { return f.values.Len() }
