package matching

import (
	"sort"
	"strings"
)

// Priority orders optimization hints for display.
type Priority int

// Hint priorities, highest first.
const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

// String returns the display name of a priority.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "alta"
	case PriorityMedium:
		return "media"
	case PriorityLow:
		return "baixa"
	default:
		return "desconhecida"
	}
}

// Optimization flags one template the operator should review.
type Optimization struct {
	TemplateName string   `json:"template_name"`
	Message      string   `json:"message"`
	TemplateID   int64    `json:"template_id"`
	Priority     Priority `json:"priority"`
}

// Heuristic thresholds for the template review scan.
const (
	lowSuccessRate     = 0.5
	significantUse     = 10
	lowUseCount        = 3
	excessiveThreshold = 0.95
)

// wildcardChars are characters that suggest the operator meant a pattern
// language the plain-text stage does not support.
const wildcardChars = "*%?"

// SuggestOptimizations scans the active template set and flags templates
// worth reviewing, sorted by priority. Read-only: counters come from the
// stored templates and are never modified here.
func (e *Engine) SuggestOptimizations() []Optimization {
	snap := e.snap.Load()

	var out []Optimization
	for _, t := range snap.templates {
		if t.SuccessRate < lowSuccessRate && t.UseCount >= significantUse {
			out = append(out, Optimization{
				TemplateID:   t.ID,
				TemplateName: t.Name,
				Priority:     PriorityHigh,
				Message:      "Taxa de acerto baixa; revise o padrão e considere adicionar uma expressão regular",
			})
		}

		if strings.ContainsAny(t.Pattern, wildcardChars) && t.Regex == "" {
			out = append(out, Optimization{
				TemplateID:   t.ID,
				TemplateName: t.Name,
				Priority:     PriorityMedium,
				Message:      "Padrão contém curinga sem expressão regular; adicione uma expressão regular",
			})
		}

		if t.MinConfidence > excessiveThreshold && t.UseCount > 0 {
			out = append(out, Optimization{
				TemplateID:   t.ID,
				TemplateName: t.Name,
				Priority:     PriorityMedium,
				Message:      "Limite de confiança muito alto; considere reduzir o limite",
			})
		}

		if t.UseCount < lowUseCount {
			out = append(out, Optimization{
				TemplateID:   t.ID,
				TemplateName: t.Name,
				Priority:     PriorityLow,
				Message:      "Modelo pouco utilizado; considere ampliar o padrão ou desativá-lo",
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})

	return out
}
