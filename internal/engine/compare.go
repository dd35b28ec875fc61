package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/TilePack/internal/model"
)

// ComparisonScenario defines a named config to compare.
type ComparisonScenario struct {
	Name   string
	Config model.Config
}

// ComparisonResult holds the packing result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario   ComparisonScenario
	Result     model.Result
	Placed     int
	Discarded  int
	FinalLevel int
	Coverage   float64
	Err        error
}

// CompareScenarios runs a packing for each scenario and returns the results
// in scenario order. Every scenario gets the same options, so a fixed seed
// makes the comparison reproducible.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, outlines []model.Outline, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		cr := ComparisonResult{Scenario: scenario}

		e, err := New(scenario.Config, outlines, opts...)
		if err != nil {
			cr.Err = fmt.Errorf("failed to prepare scenario %q: %w", scenario.Name, err)
			results = append(results, cr)
			continue
		}
		result, err := e.Run(ctx)
		if err != nil {
			cr.Err = fmt.Errorf("failed to run scenario %q: %w", scenario.Name, err)
			results = append(results, cr)
			continue
		}

		cr.Result = result
		cr.Placed = len(result.Placements)
		cr.Discarded = result.Discarded
		cr.FinalLevel = result.Status.ScaleLevel
		cr.Coverage = result.Coverage()
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current config, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.Config) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:   "Current Settings",
			Config: base,
		},
	}

	// Scenario: Try the other spiral
	altSpiral := base
	if base.Spiral == model.SpiralArchimedean {
		altSpiral.Spiral = model.SpiralRectangular
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Rectangular Spiral",
			Config: altSpiral,
		})
	} else {
		altSpiral.Spiral = model.SpiralArchimedean
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Archimedean Spiral",
			Config: altSpiral,
		})
	}

	// Scenario: Toggle the growth pass
	twoPass := base
	twoPass.TwoPass = !base.TwoPass
	name := "No Growth Pass"
	if twoPass.TwoPass {
		name = "Growth Pass"
	}
	scenarios = append(scenarios, ComparisonScenario{
		Name:   name,
		Config: twoPass,
	})

	// Scenario: Tighter padding
	if base.Tile.Padding > 1.0 {
		tight := base
		tight.Tile.Padding = base.Tile.Padding * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Padding %.1f (half)", tight.Tile.Padding),
			Config: tight,
		})
	}

	// Scenario: Strict frequency
	if !base.Scale.StrictFrequency {
		strict := base
		strict.Scale.StrictFrequency = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Strict Frequency",
			Config: strict,
		})
	}

	return scenarios
}
