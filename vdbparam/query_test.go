package vdbparam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertQueryParam(t *testing.T) {
	p, err := NewQueryParam().
		WithCollectionName("books").
		WithPartitionNames("a", "b").
		WithOutFields("book_id").
		WithExpr("book_id in [1, 2]").
		WithTravelTimestamp(99).
		WithGuaranteeTimestamp(GuaranteeStrongTS).
		Build()
	require.NoError(t, err)

	req, err := ConvertQueryParam(p)
	require.NoError(t, err)
	assert.Equal(t, &QueryRequest{
		CollectionName:     "books",
		PartitionNames:     []string{"a", "b"},
		OutputFields:       []string{"book_id"},
		Expr:               "book_id in [1, 2]",
		TravelTimestamp:    99,
		GuaranteeTimestamp: GuaranteeStrongTS,
	}, req)
}

func TestQueryParamDefaults(t *testing.T) {
	p, err := NewQueryParam().WithCollectionName("books").Build()
	require.NoError(t, err)
	assert.Equal(t, GuaranteeEventuallyTS, p.GuaranteeTimestamp())
	assert.Empty(t, p.Expr())

	_, err = NewQueryParam().Build()
	requireParamError(t, err, ErrTypeValue)

	_, err = ConvertQueryParam(nil)
	requireParamError(t, err, ErrTypeValue)
}
