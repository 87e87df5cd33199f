package model

import (
	"fmt"
	"time"
)

// ImportTemplate represents a reusable description-pattern-to-category mapping
// used to auto-classify newly imported transactions (modelo de importação).
type ImportTemplate struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Name          string    `json:"name"`
	Pattern       string    `json:"pattern"`
	Regex         string    `json:"regex,omitempty"`
	Category      string    `json:"category"`
	ID            int64     `json:"id"`
	MinConfidence float64   `json:"min_confidence"`
	SuccessRate   float64   `json:"success_rate"`
	UseCount      int       `json:"use_count"`
	Active        bool      `json:"active"`
}

// Validate ensures the template has valid data.
func (t *ImportTemplate) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}

	if t.Pattern == "" {
		return fmt.Errorf("template pattern is required")
	}

	if t.MinConfidence < 0 || t.MinConfidence > 1 {
		return fmt.Errorf("minimum confidence must be between 0 and 1")
	}

	if t.SuccessRate < 0 || t.SuccessRate > 1 {
		return fmt.Errorf("success rate must be between 0 and 1")
	}

	return nil
}
