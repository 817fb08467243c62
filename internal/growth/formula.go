package growth

// ReturnFormula maps a scenario straight to a per-trade return. Formulas are
// the unit compared by the calibration search.
type ReturnFormula interface {
	Name() string
	PerTradeReturn(s Scenario) float64
}

// FormulaFunc adapts a plain function into a named ReturnFormula
type FormulaFunc struct {
	Label string
	Fn    func(s Scenario) float64
}

// Name returns the formula label
func (f FormulaFunc) Name() string {
	return f.Label
}

// PerTradeReturn evaluates the function
func (f FormulaFunc) PerTradeReturn(s Scenario) float64 {
	return f.Fn(s)
}

// PolicyFormula turns a fraction policy into a formula: kelly * fraction
type PolicyFormula struct {
	Policy FractionPolicy
}

// Name returns the wrapped policy's name
func (p PolicyFormula) Name() string {
	return p.Policy.Name()
}

// PerTradeReturn returns zero for systems without an edge
func (p PolicyFormula) PerTradeReturn(s Scenario) float64 {
	k := s.Kelly()
	if !k.HasEdge() {
		return 0
	}
	return k.KellyCriterion * p.Policy.Fraction(s, k)
}

// CandidateFormulas returns the built-in formula variants for comparison
func CandidateFormulas() []ReturnFormula {
	piecewise, _ := NewPiecewiseFraction(DefaultPiecewiseTiers, 0.5)
	return []ReturnFormula{
		PolicyFormula{Policy: ConstantFraction{Value: 1.0}},
		PolicyFormula{Policy: ConstantFraction{Value: 0.5}},
		PolicyFormula{Policy: ConstantFraction{Value: 0.25}},
		PolicyFormula{Policy: piecewise},
		PolicyFormula{Policy: DefaultPowerLaw},
		FormulaFunc{
			Label: "ev-scaled",
			Fn: func(s Scenario) float64 {
				k := s.Kelly()
				if !k.HasEdge() {
					return 0
				}
				return k.KellyCriterion * clampFraction(0.5+0.35*k.ExpectedValue)
			},
		},
	}
}
