package matching

import (
	"testing"

	"github.com/concilia-dev/concilia/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestOptimizations(t *testing.T) {
	templates := []model.ImportTemplate{
		{
			ID: 1, Name: "Baixa taxa", Pattern: "fornecedor xyz",
			SuccessRate: 0.2, UseCount: 15, MinConfidence: 0.7, Active: true,
		},
		{
			ID: 2, Name: "Curinga", Pattern: "PIX*",
			SuccessRate: 0.9, UseCount: 5, MinConfidence: 0.7, Active: true,
		},
		{
			ID: 3, Name: "Limite alto", Pattern: "tarifa bancaria",
			SuccessRate: 1.0, UseCount: 4, MinConfidence: 0.99, Active: true,
		},
		{
			ID: 4, Name: "Pouco uso", Pattern: "aluguel escritorio",
			SuccessRate: 1.0, UseCount: 1, MinConfidence: 0.7, Active: true,
		},
		{
			ID: 5, Name: "Saudável", Pattern: "folha pagamento",
			SuccessRate: 0.9, UseCount: 20, MinConfidence: 0.7, Active: true,
		},
	}

	engine := NewEngine(templates)
	hints := engine.SuggestOptimizations()

	require.Len(t, hints, 4)

	// Sorted high > medium > low.
	for i := 1; i < len(hints); i++ {
		assert.LessOrEqual(t, hints[i-1].Priority, hints[i].Priority)
	}

	assert.Equal(t, int64(1), hints[0].TemplateID)
	assert.Equal(t, PriorityHigh, hints[0].Priority)

	byID := make(map[int64]Optimization)
	for _, h := range hints {
		byID[h.TemplateID] = h
	}
	assert.Equal(t, PriorityMedium, byID[2].Priority)
	assert.Equal(t, PriorityMedium, byID[3].Priority)
	assert.Equal(t, PriorityLow, byID[4].Priority)
	assert.NotContains(t, byID, int64(5))
}

func TestSuggestOptimizationsSkipsInactive(t *testing.T) {
	engine := NewEngine([]model.ImportTemplate{
		{ID: 1, Name: "Inativo", Pattern: "x*", UseCount: 0, Active: false},
	})

	assert.Empty(t, engine.SuggestOptimizations())
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "alta", PriorityHigh.String())
	assert.Equal(t, "media", PriorityMedium.String())
	assert.Equal(t, "baixa", PriorityLow.String())
}
