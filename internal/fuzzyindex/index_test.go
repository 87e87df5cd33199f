package fuzzyindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchExactPattern(t *testing.T) {
	ix := New([]Doc{
		{ID: 1, Pattern: "pagamento fornecedor", Name: "Fornecedores"},
		{ID: 2, Pattern: "tarifa bancaria", Name: "Tarifas"},
	})

	hits := ix.Search("pagamento fornecedor")
	require.NotEmpty(t, hits)
	assert.Equal(t, int64(1), hits[0].Doc.ID)
	assert.Equal(t, 0.0, hits[0].Distance)
}

func TestSearchSubstringIgnoresLocation(t *testing.T) {
	ix := New([]Doc{
		{ID: 1, Pattern: "pix recebido", Name: "Recebimentos PIX"},
	})

	// The pattern appearing anywhere inside the query is a perfect field hit.
	hits := ix.Search("ted 123 pix recebido de joao da silva")
	require.NotEmpty(t, hits)
	assert.Equal(t, int64(1), hits[0].Doc.ID)
	assert.Equal(t, 0.0, hits[0].Distance)
}

func TestSearchFiltersByThreshold(t *testing.T) {
	ix := New([]Doc{
		{ID: 1, Pattern: "aluguel escritorio", Name: "Aluguel"},
	})

	hits := ix.Search("zzz qqq www")
	assert.Empty(t, hits)
}

func TestSearchRanksCloserFirst(t *testing.T) {
	ix := New([]Doc{
		{ID: 1, Pattern: "tarifa manutencao conta", Name: "Tarifas"},
		{ID: 2, Pattern: "tarifa bancaria", Name: "Tarifas"},
	})

	hits := ix.Search("tarifa bancaria mensal")
	require.Len(t, hits, 2)
	assert.Equal(t, int64(2), hits[0].Doc.ID)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
}

func TestSearchWeightsPatternOverName(t *testing.T) {
	ix := New([]Doc{
		{ID: 1, Pattern: "folha pagamento", Name: "Energia"},
		{ID: 2, Pattern: "energia eletrica", Name: "Folha"},
	})

	hits := ix.Search("folha pagamento")
	require.NotEmpty(t, hits)
	assert.Equal(t, int64(1), hits[0].Doc.ID)
}

func TestSearchShortTokensNotMatchable(t *testing.T) {
	ix := New([]Doc{
		{ID: 1, Pattern: "ab", Name: ""},
	})

	// A two-character pattern is below the minimum matchable length, so
	// containment must not count as a perfect hit.
	hits := ix.Search("ab cd ef gh ij kl")
	for _, h := range hits {
		assert.Greater(t, h.Distance, 0.0)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := New([]Doc{{ID: 1, Pattern: "tarifa", Name: "Tarifas"}})

	assert.Nil(t, ix.Search(""))
	assert.Nil(t, ix.Search("!!!"))
}

func TestSearchNormalizesQueryAndDocs(t *testing.T) {
	ix := New([]Doc{
		{ID: 1, Pattern: "Transferência-Bancária", Name: "Transferências"},
	})

	hits := ix.Search("transferencia bancaria")
	require.NotEmpty(t, hits)
	assert.Equal(t, 0.0, hits[0].Distance)
}
