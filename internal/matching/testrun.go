package matching

import (
	"fmt"
	"regexp"

	"github.com/concilia-dev/concilia/internal/fuzzyindex"
	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/similarity"
	"github.com/concilia-dev/concilia/internal/textnorm"
)

// maxExampleMisses caps how many failing samples a test report carries.
const maxExampleMisses = 5

// MissExample describes one sample description the template failed to match.
type MissExample struct {
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// TestReport summarizes how a template performed against a sample set.
type TestReport struct {
	ExampleMisses []MissExample `json:"example_misses,omitempty"`
	Matches       int           `json:"matches"`
	Misses        int           `json:"misses"`
	HitRate       float64       `json:"hit_rate"`
}

// TestTemplate runs the exact, regex and fuzzy stages for a single template
// against a set of sample descriptions, without the suggestion step. It is
// read-only and does not touch the engine's snapshot. At least one sample is
// required.
func TestTemplate(tmpl model.ImportTemplate, samples []string) (TestReport, error) {
	if err := tmpl.Validate(); err != nil {
		return TestReport{}, fmt.Errorf("invalid template: %w", err)
	}
	if len(samples) == 0 {
		return TestReport{}, fmt.Errorf("at least one sample description is required")
	}

	var re *regexp.Regexp
	var regexErr error
	if tmpl.Regex != "" {
		re, regexErr = regexp.Compile("(?i)" + tmpl.Regex)
	}

	normPattern := textnorm.Normalize(tmpl.Pattern)
	index := fuzzyindex.New([]fuzzyindex.Doc{{ID: tmpl.ID, Pattern: tmpl.Pattern, Name: tmpl.Name}})

	var report TestReport
	for _, sample := range samples {
		normDesc := textnorm.Normalize(sample)

		if matched, reason := testOne(tmpl, normPattern, normDesc, re, regexErr, index); matched {
			report.Matches++
		} else {
			report.Misses++
			if len(report.ExampleMisses) < maxExampleMisses {
				report.ExampleMisses = append(report.ExampleMisses, MissExample{
					Description: sample,
					Reason:      reason,
				})
			}
		}
	}

	report.HitRate = float64(report.Matches) / float64(len(samples))
	return report, nil
}

// testOne applies the match stages for one sample and explains a miss.
func testOne(tmpl model.ImportTemplate, normPattern, normDesc string, re *regexp.Regexp, regexErr error, index *fuzzyindex.Index) (bool, string) {
	// Exact stage.
	if normDesc != "" && normDesc == normPattern {
		return true, ""
	}

	// Regex stage. An invalid regex is skipped, not fatal.
	if tmpl.Regex != "" && regexErr == nil && re.MatchString(normDesc) {
		return true, ""
	}

	// Fuzzy stage.
	var score float64
	if hits := index.Search(normDesc); len(hits) > 0 {
		indexScore := 1 - hits[0].Distance
		editSim := similarity.Similarity(normDesc, normPattern)
		score = similarity.BlendPrimary(indexScore, editSim)
		if score >= tmpl.MinConfidence {
			return true, ""
		}
	}

	switch {
	case tmpl.Regex != "" && regexErr != nil:
		return false, "Expressão regular inválida"
	case tmpl.Regex != "":
		return false, "Expressão regular não correspondeu"
	default:
		return false, fmt.Sprintf("Similaridade de %.2f%% abaixo do limite", score*100)
	}
}
