package api

import (
	"fmt"
	"sort"

	"github.com/yourusername/trade-journal/internal/calibration"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/growth"
	"github.com/yourusername/trade-journal/internal/models"
)

// Named fraction policies accepted by calculation requests
const (
	PolicyFull       = "full"
	PolicyHalf       = "half"
	PolicyQuarter    = "quarter"
	PolicyPiecewise  = "piecewise"
	PolicyPowerLaw   = "power-law"
	PolicyCalibrated = "calibrated"
)

// PolicySet resolves policy names to fraction policies. "calibrated" serves
// the most recent fit and falls back to the piecewise table until one exists.
type PolicySet struct {
	policies    map[string]growth.FractionPolicy
	active      *calibration.ActivePolicy
	defaultName string
}

// NewPolicySet builds the named policies from calibration settings
func NewPolicySet(cfg config.CalibrationConfig, active *calibration.ActivePolicy) (*PolicySet, error) {
	tiers := growth.DefaultPiecewiseTiers
	if len(cfg.Tiers) > 0 {
		tiers = make([]growth.Tier, 0, len(cfg.Tiers))
		for _, t := range cfg.Tiers {
			tiers = append(tiers, growth.Tier{MinExpectedValue: t.MinExpectedValue, Fraction: t.Fraction})
		}
	}
	fallback := cfg.DefaultFraction
	if fallback == 0 {
		fallback = 0.5
	}
	piecewise, err := growth.NewPiecewiseFraction(tiers, fallback)
	if err != nil {
		return nil, fmt.Errorf("piecewise policy: %w", err)
	}

	defaultName := cfg.DefaultPolicy
	if defaultName == "" {
		defaultName = PolicyPiecewise
	}
	if active == nil {
		active = &calibration.ActivePolicy{}
	}

	set := &PolicySet{
		policies: map[string]growth.FractionPolicy{
			PolicyFull:      growth.ConstantFraction{Value: 1.0},
			PolicyHalf:      growth.ConstantFraction{Value: 0.5},
			PolicyQuarter:   growth.ConstantFraction{Value: 0.25},
			PolicyPiecewise: piecewise,
			PolicyPowerLaw:  growth.DefaultPowerLaw,
		},
		active:      active,
		defaultName: defaultName,
	}
	if _, _, err := set.Resolve(defaultName); err != nil {
		return nil, fmt.Errorf("default policy: %w", err)
	}
	return set, nil
}

// Resolve returns the policy for name; empty selects the default
func (p *PolicySet) Resolve(name string) (string, growth.FractionPolicy, error) {
	if name == "" {
		name = p.defaultName
	}
	if name == PolicyCalibrated {
		return name, p.active.Policy(p.policies[PolicyPiecewise]), nil
	}
	policy, ok := p.policies[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown policy %q", models.ErrInvalidInput, name)
	}
	return name, policy, nil
}

// Active returns the calibrated-policy holder
func (p *PolicySet) Active() *calibration.ActivePolicy {
	return p.active
}

// Names lists the accepted policy names
func (p *PolicySet) Names() []string {
	names := make([]string, 0, len(p.policies)+1)
	for name := range p.policies {
		names = append(names, name)
	}
	names = append(names, PolicyCalibrated)
	sort.Strings(names)
	return names
}
