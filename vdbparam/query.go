package vdbparam

// QueryRequest is the wire record for a scalar query.
type QueryRequest struct {
	DbName             string
	CollectionName     string
	PartitionNames     []string
	OutputFields       []string
	Expr               string
	TravelTimestamp    uint64
	GuaranteeTimestamp uint64
}

// QueryParam is a validated set of query parameters. Build it with
// [NewQueryParam].
type QueryParam struct {
	collectionName     string
	partitionNames     []string
	outFields          []string
	expr               string
	travelTimestamp    uint64
	guaranteeTimestamp uint64
}

func (p *QueryParam) CollectionName() string     { return p.collectionName }
func (p *QueryParam) PartitionNames() []string   { return cloneStrings(p.partitionNames) }
func (p *QueryParam) OutFields() []string        { return cloneStrings(p.outFields) }
func (p *QueryParam) Expr() string               { return p.expr }
func (p *QueryParam) TravelTimestamp() uint64    { return p.travelTimestamp }
func (p *QueryParam) GuaranteeTimestamp() uint64 { return p.guaranteeTimestamp }

// QueryParamBuilder accumulates query parameters. Each method returns an
// updated copy.
type QueryParamBuilder struct {
	p QueryParam
}

// NewQueryParam starts building query parameters with eventual consistency.
func NewQueryParam() QueryParamBuilder {
	return QueryParamBuilder{p: QueryParam{guaranteeTimestamp: GuaranteeEventuallyTS}}
}

func (b QueryParamBuilder) WithCollectionName(name string) QueryParamBuilder {
	b.p.collectionName = name
	return b
}

func (b QueryParamBuilder) WithPartitionNames(names ...string) QueryParamBuilder {
	b.p.partitionNames = cloneStrings(names)
	return b
}

func (b QueryParamBuilder) WithOutFields(fields ...string) QueryParamBuilder {
	b.p.outFields = cloneStrings(fields)
	return b
}

func (b QueryParamBuilder) WithExpr(expr string) QueryParamBuilder {
	b.p.expr = expr
	return b
}

func (b QueryParamBuilder) WithTravelTimestamp(ts uint64) QueryParamBuilder {
	b.p.travelTimestamp = ts
	return b
}

func (b QueryParamBuilder) WithGuaranteeTimestamp(ts uint64) QueryParamBuilder {
	b.p.guaranteeTimestamp = ts
	return b
}

// Build validates the parameters. Only the collection name is required.
func (b QueryParamBuilder) Build() (*QueryParam, error) {
	if err := checkNotBlank(b.p.collectionName, "Collection name"); err != nil {
		return nil, err
	}
	p := b.p
	p.partitionNames = cloneStrings(p.partitionNames)
	p.outFields = cloneStrings(p.outFields)
	return &p, nil
}

// ConvertQueryParam copies the query parameters into a query request.
func ConvertQueryParam(param *QueryParam) (*QueryRequest, error) {
	if param == nil {
		return nil, newValueError("", "query param cannot be nil")
	}
	return &QueryRequest{
		CollectionName:     param.collectionName,
		PartitionNames:     cloneStrings(param.partitionNames),
		OutputFields:       cloneStrings(param.outFields),
		Expr:               param.expr,
		TravelTimestamp:    param.travelTimestamp,
		GuaranteeTimestamp: param.guaranteeTimestamp,
	}, nil
}
