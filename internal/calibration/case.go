// Package calibration fits growth-model parameters against reference target
// profits produced by an external calculator.
package calibration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/yourusername/trade-journal/internal/growth"
	"gopkg.in/yaml.v3"
)

// ErrInvalidCase is returned for calibration cases that cannot be scored
var ErrInvalidCase = errors.New("invalid calibration case")

const skipReasonNoEdge = "skipped: no edge"

// Case pairs a scenario with the profit a reference system reported for it
type Case struct {
	Name            string `json:"name,omitempty" yaml:"name,omitempty"`
	growth.Scenario `yaml:",inline"`
	ExpectedProfit  float64 `json:"expected_profit" yaml:"expected_profit"`
}

// NewCase builds a validated calibration case
func NewCase(name string, s growth.Scenario, expectedProfit float64) (Case, error) {
	c := Case{Name: name, Scenario: s, ExpectedProfit: expectedProfit}
	if err := c.Validate(); err != nil {
		return Case{}, err
	}
	return c, nil
}

// Validate rejects cases with no capital or no trades to compound
func (c Case) Validate() error {
	if err := c.Scenario.Validate(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidCase, c.Name, err)
	}
	if c.TotalTrades <= 0 {
		return fmt.Errorf("%w %q: total trades must be positive", ErrInvalidCase, c.Name)
	}
	if math.IsNaN(c.ExpectedProfit) || math.IsInf(c.ExpectedProfit, 0) {
		return fmt.Errorf("%w %q: expected profit must be finite", ErrInvalidCase, c.Name)
	}
	return nil
}

// Label returns the case name or a positional fallback
func (c Case) Label(index int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("case-%d", index+1)
}

type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// LoadCases reads a YAML or JSON case file
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	return ParseCases(data)
}

// ParseCases decodes and validates a case list. Unknown fields are rejected.
func ParseCases(data []byte) ([]Case, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file caseFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to parse case file: %w", ErrInvalidCase, err)
	}

	for i, c := range file.Cases {
		if c.Name == "" {
			file.Cases[i].Name = c.Label(i)
		}
		if err := file.Cases[i].Validate(); err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
	}
	return file.Cases, nil
}

// SaveCases writes cases in the format LoadCases reads
func SaveCases(path string, cases []Case) error {
	data, err := yaml.Marshal(caseFile{Cases: cases})
	if err != nil {
		return fmt.Errorf("failed to encode cases: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write case file: %w", err)
	}
	return nil
}

// DefaultCases are the built-in reference cases
func DefaultCases() []Case {
	return []Case{
		{
			Name:           "reference-50pct-1to3",
			Scenario:       growth.Scenario{Capital: 1000, TotalTrades: 10, Accuracy: 50, RiskRewardRatio: 3},
			ExpectedProfit: 11799.69,
		},
		{
			Name:           "losing-25pct-1to2",
			Scenario:       growth.Scenario{Capital: 1000, TotalTrades: 10, Accuracy: 25, RiskRewardRatio: 2},
			ExpectedProfit: 0,
		},
	}
}
