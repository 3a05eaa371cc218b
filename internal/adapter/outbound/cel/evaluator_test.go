package cel

import (
	"context"
	"strings"
	"testing"
)

func TestEvaluateTrueExpression(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	ok, err := e.Evaluate(context.Background(), `vars["role"] == "admin"`, map[string]interface{}{"role": "admin"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Fatalf("expected true")
	}
}

func TestEvaluateFalseExpression(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	ok, err := e.Evaluate(context.Background(), `vars["role"] == "admin"`, map[string]interface{}{"role": "viewer"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ok {
		t.Fatalf("expected false")
	}
}

func TestEvaluateMissingVarIsNullNotError(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	ok, err := e.Evaluate(context.Background(), `var_get(vars, "absent") == null`, map[string]interface{}{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for missing key via var_get")
	}
}

func TestEvaluateNonBooleanExpressionErrors(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	_, err = e.Evaluate(context.Background(), `1 + 1`, nil)
	if err == nil {
		t.Fatalf("expected error for non-boolean result")
	}
}

func TestValidateExpressionRejectsTooLong(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	long := "true == (" + strings.Repeat("true || ", 200) + "true)"
	if err := e.ValidateExpression(long); err == nil {
		t.Fatalf("expected error for over-length expression")
	}
}

func TestValidateExpressionRejectsDeepNesting(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	var b strings.Builder
	for i := 0; i < maxNestingDepth+1; i++ {
		b.WriteString("(")
	}
	b.WriteString("true")
	for i := 0; i < maxNestingDepth+1; i++ {
		b.WriteString(")")
	}
	if err := e.ValidateExpression(b.String()); err == nil {
		t.Fatalf("expected error for excessive nesting")
	}
}

func TestValidateExpressionRejectsEmpty(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	if err := e.ValidateExpression(""); err == nil {
		t.Fatalf("expected error for empty expression")
	}
}

func TestEvaluateCachesCompiledProgram(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	expr := `vars["n"] == 1.0`
	for i := 0; i < 3; i++ {
		if _, err := e.Evaluate(context.Background(), expr, map[string]interface{}{"n": 1.0}); err != nil {
			t.Fatalf("Evaluate iteration %d: %v", i, err)
		}
	}
	e.mu.RLock()
	_, cached := e.programs[expr]
	e.mu.RUnlock()
	if !cached {
		t.Fatalf("expected program to be cached after repeated evaluation")
	}
}
