// Package cel implements internal/domain/policy.ConditionEvaluator using
// google/cel-go, compiling and caching CapabilityPolicy.Condition
// expressions and evaluating them against an EvaluationContext's Vars.
package cel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
)

// maxExpressionLength is the maximum allowed length for a CEL condition.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit to prevent cost-exhaustion DoS.
const maxCostBudget = 100_000

// maxNestingDepth is the maximum allowed parenthesis/bracket nesting depth.
const maxNestingDepth = 50

// evalTimeout bounds a single CEL evaluation.
const evalTimeout = 5 * time.Second

// interruptCheckFreq is how often (in comprehension iterations) context
// cancellation is checked.
const interruptCheckFreq = 100

// Evaluator implements policy.ConditionEvaluator, compiling expressions
// once and caching their programs for reuse across evaluations.
type Evaluator struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewEvaluator creates a CEL-backed condition evaluator.
func NewEvaluator() (*Evaluator, error) {
	env, err := NewConditionEnvironment()
	if err != nil {
		return nil, fmt.Errorf("create condition environment: %w", err)
	}
	return &Evaluator{env: env, programs: make(map[string]cel.Program)}, nil
}

// ValidateExpression checks that expr is syntactically valid and within
// the evaluator's safety limits, without evaluating it.
func (e *Evaluator) ValidateExpression(expr string) error {
	if expr == "" {
		return errors.New("expression is empty")
	}
	if len(expr) > maxExpressionLength {
		return fmt.Errorf("expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}
	if err := validateNesting(expr); err != nil {
		return err
	}
	_, err := e.compile(expr)
	return err
}

// Evaluate implements policy.ConditionEvaluator.
func (e *Evaluator) Evaluate(ctx context.Context, expression string, vars map[string]interface{}) (bool, error) {
	prg, err := e.compile(expression)
	if err != nil {
		return false, err
	}

	if vars == nil {
		vars = map[string]interface{}{}
	}

	evalCtx, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()

	result, _, err := prg.ContextEval(evalCtx, map[string]any{"vars": vars})
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}

	boolResult, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean, got %T", result.Value())
	}
	return boolResult, nil
}

func (e *Evaluator) compile(expression string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation failed: %w", issues.Err())
	}

	prg, err := e.env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
		cel.InterruptCheckFrequency(interruptCheckFreq),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}

	e.mu.Lock()
	e.programs[expression] = prg
	e.mu.Unlock()
	return prg, nil
}

// validateNesting checks that expr does not exceed the maximum allowed
// nesting depth for parentheses, brackets, and braces.
func validateNesting(expr string) error {
	var depth, maxDepth int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	if maxDepth > maxNestingDepth {
		return fmt.Errorf("expression nesting too deep: %d levels (max %d)", maxDepth, maxNestingDepth)
	}
	return nil
}
