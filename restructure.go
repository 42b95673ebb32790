package restructure

import (
	"go.uber.org/zap"

	"github.com/cfgkit/restructure/internal/engine"
	"github.com/cfgkit/restructure/region"
	"github.com/cfgkit/restructure/scfg"
)

// Config controls a restructuring run.
type Config struct {
	// Logger receives debug-level pass tracing. Nil disables logging.
	Logger *zap.Logger

	// StepBudget bounds the engine's total assembly steps. Zero selects a
	// quadratic default sized to the input graph.
	StepBudget int
}

// Result is a finished restructuring: the region tree plus the control
// variables synthesized while building it.
type Result struct {
	Tree region.Region
	Vars *region.VarTable
}

// Restructure converts a validated control-flow graph into a tree of
// single-entry single-exit regions. The tree contains every input block
// exactly once, executes the same traces as the input graph, and is
// identical across runs on the same input.
func Restructure(g *scfg.Graph, cfg Config) (*Result, error) {
	eng := engine.New(engine.Config{
		Logger:     cfg.Logger,
		StepBudget: cfg.StepBudget,
	})
	tree, vars, err := eng.Restructure(g)
	if err != nil {
		return nil, err
	}
	return &Result{Tree: tree, Vars: vars}, nil
}
