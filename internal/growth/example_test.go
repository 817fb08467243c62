package growth_test

import (
	"fmt"

	"github.com/yourusername/trade-journal/internal/growth"
)

func ExampleProject() {
	s, err := growth.NewScenario(1000, 10, 50, 3)
	if err != nil {
		panic(err)
	}
	full, _ := growth.Project(s, 1.0)
	fractional, _ := growth.Project(s, 0.8712)

	fmt.Printf("kelly=%.4f ev=%.2f\n", full.Kelly.KellyCriterion, full.Kelly.ExpectedValue)
	fmt.Printf("full kelly profit=%.2f\n", full.Profit)
	fmt.Printf("0.8712 kelly profit=%.2f\n", fractional.Profit)
	// Output:
	// kelly=0.3333 ev=1.00
	// full kelly profit=16757.73
	// 0.8712 kelly profit=11800.99
}

func ExampleModel_Project() {
	s, _ := growth.NewScenario(1000, 10, 25, 2)
	result, _ := growth.NewModel(growth.ConstantFraction{Value: 0.5}).Project(s)

	fmt.Printf("no edge=%v profit=%.2f balance=%.2f\n", result.NoEdge, result.Profit, result.FinalBalance)
	// Output:
	// no edge=true profit=0.00 balance=1000.00
}
