// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vdbparam

import "strconv"

// Search parameter keys understood by the service.
const (
	ParamAnnsField    = "anns_field"
	ParamTopK         = "topk"
	ParamMetricType   = "metric_type"
	ParamRoundDecimal = "round_decimal"
	ParamParams       = "params"
)

const (
	// DefaultMetricType is used when no metric is set on a search.
	DefaultMetricType = "L2"
	// DefaultRoundDecimal disables rounding of distances.
	DefaultRoundDecimal = -1
	maxRoundDecimal     = 6
)

// Guarantee timestamps with special meaning to the service.
const (
	// GuaranteeStrongTS requests a read that sees every prior write.
	GuaranteeStrongTS uint64 = 0
	// GuaranteeEventuallyTS requests an eventually consistent read.
	GuaranteeEventuallyTS uint64 = 1
)

// SearchRequest is the wire record for a vector search.
type SearchRequest struct {
	DbName             string
	CollectionName     string
	PartitionNames     []string
	Dsl                string
	DslType            DslType
	PlaceholderGroup   []byte
	SearchParams       []KeyValuePair
	OutputFields       []string
	TravelTimestamp    uint64
	GuaranteeTimestamp uint64
}

// SearchParam is a validated set of search parameters. Build it with
// [NewSearchParam].
type SearchParam struct {
	collectionName     string
	partitionNames     []string
	metricType         string
	vectorFieldName    string
	topK               int64
	expr               string
	outFields          []string
	vectors            []Vector
	roundDecimal       int
	params             string
	travelTimestamp    uint64
	guaranteeTimestamp uint64
}

func (p *SearchParam) CollectionName() string     { return p.collectionName }
func (p *SearchParam) PartitionNames() []string   { return cloneStrings(p.partitionNames) }
func (p *SearchParam) MetricType() string         { return p.metricType }
func (p *SearchParam) VectorFieldName() string    { return p.vectorFieldName }
func (p *SearchParam) TopK() int64                { return p.topK }
func (p *SearchParam) Expr() string               { return p.expr }
func (p *SearchParam) OutFields() []string        { return cloneStrings(p.outFields) }
func (p *SearchParam) Vectors() []Vector          { return append([]Vector(nil), p.vectors...) }
func (p *SearchParam) RoundDecimal() int          { return p.roundDecimal }
func (p *SearchParam) Params() string             { return p.params }
func (p *SearchParam) TravelTimestamp() uint64    { return p.travelTimestamp }
func (p *SearchParam) GuaranteeTimestamp() uint64 { return p.guaranteeTimestamp }

// SearchParamBuilder accumulates search parameters. Each method returns an
// updated copy.
type SearchParamBuilder struct {
	p SearchParam
}

// NewSearchParam starts building search parameters with the default metric,
// no rounding and eventual consistency.
func NewSearchParam() SearchParamBuilder {
	return SearchParamBuilder{p: SearchParam{
		metricType:         DefaultMetricType,
		roundDecimal:       DefaultRoundDecimal,
		guaranteeTimestamp: GuaranteeEventuallyTS,
	}}
}

func (b SearchParamBuilder) WithCollectionName(name string) SearchParamBuilder {
	b.p.collectionName = name
	return b
}

func (b SearchParamBuilder) WithPartitionNames(names ...string) SearchParamBuilder {
	b.p.partitionNames = cloneStrings(names)
	return b
}

func (b SearchParamBuilder) AddPartitionName(name string) SearchParamBuilder {
	b.p.partitionNames = append(cloneStrings(b.p.partitionNames), name)
	return b
}

func (b SearchParamBuilder) WithMetricType(metric string) SearchParamBuilder {
	b.p.metricType = metric
	return b
}

// WithVectorFieldName names the vector field the targets are compared with.
func (b SearchParamBuilder) WithVectorFieldName(name string) SearchParamBuilder {
	b.p.vectorFieldName = name
	return b
}

func (b SearchParamBuilder) WithTopK(topK int64) SearchParamBuilder {
	b.p.topK = topK
	return b
}

// WithExpr sets the boolean filter expression.
func (b SearchParamBuilder) WithExpr(expr string) SearchParamBuilder {
	b.p.expr = expr
	return b
}

func (b SearchParamBuilder) WithOutFields(fields ...string) SearchParamBuilder {
	b.p.outFields = cloneStrings(fields)
	return b
}

func (b SearchParamBuilder) AddOutField(field string) SearchParamBuilder {
	b.p.outFields = append(cloneStrings(b.p.outFields), field)
	return b
}

// WithVectors sets the search targets. All targets must be of one kind and
// one dimension.
func (b SearchParamBuilder) WithVectors(vectors ...Vector) SearchParamBuilder {
	b.p.vectors = append([]Vector(nil), vectors...)
	return b
}

func (b SearchParamBuilder) WithRoundDecimal(decimal int) SearchParamBuilder {
	b.p.roundDecimal = decimal
	return b
}

// WithParams sets the opaque index search parameters, usually JSON such as
// {"nprobe":10}.
func (b SearchParamBuilder) WithParams(params string) SearchParamBuilder {
	b.p.params = params
	return b
}

// WithTravelTimestamp requests a read of the collection as of ts.
func (b SearchParamBuilder) WithTravelTimestamp(ts uint64) SearchParamBuilder {
	b.p.travelTimestamp = ts
	return b
}

// WithGuaranteeTimestamp sets the minimum timestamp the read must observe.
func (b SearchParamBuilder) WithGuaranteeTimestamp(ts uint64) SearchParamBuilder {
	b.p.guaranteeTimestamp = ts
	return b
}

// Build validates the parameters.
func (b SearchParamBuilder) Build() (*SearchParam, error) {
	p := b.p
	if err := checkNotBlank(p.collectionName, "Collection name"); err != nil {
		return nil, err
	}
	if err := checkNotBlank(p.vectorFieldName, "Target field name"); err != nil {
		return nil, err
	}
	if err := checkNotBlank(p.metricType, "Metric type"); err != nil {
		return nil, err
	}
	if p.topK <= 0 {
		return nil, newValueError("", "topK value %d is illegal", p.topK)
	}
	if p.roundDecimal < DefaultRoundDecimal || p.roundDecimal > maxRoundDecimal {
		return nil, newValueError("", "round decimal %d is illegal, expected a value in [%d, %d]",
			p.roundDecimal, DefaultRoundDecimal, maxRoundDecimal)
	}
	if len(p.vectors) == 0 {
		return nil, newValueError("", "target vectors cannot be empty")
	}
	if _, err := placeholderTypeOf(p.vectors); err != nil {
		return nil, err
	}
	dim := p.vectors[0].Dim()
	if dim == 0 {
		return nil, newValueError("", "target vector dimension cannot be zero")
	}
	for i, v := range p.vectors {
		if v.Dim() != dim {
			return nil, newValueError("", "target vector dimension must be equal: vector %d has dimension %d, expected %d", i, v.Dim(), dim)
		}
	}

	p.partitionNames = cloneStrings(p.partitionNames)
	p.outFields = cloneStrings(p.outFields)
	p.vectors = append([]Vector(nil), p.vectors...)
	return &p, nil
}

// placeholderTypeOf returns the common kind of the targets. Mixed kinds are
// rejected instead of letting one kind tag the other's values.
func placeholderTypeOf(vectors []Vector) (PlaceholderType, error) {
	kind := PlaceholderTypeNone
	for i, v := range vectors {
		if v == nil {
			return PlaceholderTypeNone, newTypeError("", "search target vector %d has an illegal vector type", i)
		}
		t := v.placeholderType()
		if kind != PlaceholderTypeNone && t != kind {
			return PlaceholderTypeNone, newTypeError("", "mixed vector types: vector %d is %s, previous vectors are %s", i, t, kind)
		}
		kind = t
	}
	return kind, nil
}

// ConvertSearchParam builds the search request. Target vectors are encoded
// into a single placeholder value tagged [VectorTag]; float vectors as
// little-endian float32 bytes, binary vectors verbatim. The filter always
// uses the boolean expression language.
func ConvertSearchParam(param *SearchParam) (*SearchRequest, error) {
	if param == nil {
		return nil, newValueError("", "search param cannot be nil")
	}

	plType, err := placeholderTypeOf(param.vectors)
	if err != nil {
		return nil, err
	}
	values := make([][]byte, 0, len(param.vectors))
	for _, v := range param.vectors {
		switch vec := v.(type) {
		case FloatVector:
			values = append(values, encodeFloatVector(vec))
		case BinaryVector:
			values = append(values, append([]byte{}, vec...))
		}
	}
	group := &PlaceholderGroup{Placeholders: []*PlaceholderValue{{
		Tag:    VectorTag,
		Type:   plType,
		Values: values,
	}}}

	req := &SearchRequest{
		CollectionName:   param.collectionName,
		PartitionNames:   cloneStrings(param.partitionNames),
		PlaceholderGroup: group.Marshal(),
		SearchParams: []KeyValuePair{
			{Key: ParamAnnsField, Value: param.vectorFieldName},
			{Key: ParamTopK, Value: strconv.FormatInt(param.topK, 10)},
			{Key: ParamMetricType, Value: param.metricType},
			{Key: ParamRoundDecimal, Value: strconv.Itoa(param.roundDecimal)},
		},
		OutputFields:       cloneStrings(param.outFields),
		DslType:            DslTypeBoolExprV1,
		TravelTimestamp:    param.travelTimestamp,
		GuaranteeTimestamp: param.guaranteeTimestamp,
	}
	if param.params != "" {
		req.SearchParams = append(req.SearchParams, KeyValuePair{Key: ParamParams, Value: param.params})
	}
	if param.expr != "" {
		req.Dsl = param.expr
	}
	return req, nil
}

// SearchParamValue returns the value of a search parameter key.
func (r *SearchRequest) SearchParamValue(key string) (string, bool) {
	for _, kv := range r.SearchParams {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}
