package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PaesslerAG/gval"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultFormulaCacheSize = 256
	defaultFormulaTimeout   = 50 * time.Millisecond
	// maxFormulaLength caps expression size. The language is loop-free, so
	// expression length is what bounds evaluation work.
	maxFormulaLength = 512
)

// FormulaEvaluator evaluates the arithmetic expressions of FORMULA modifiers
// against an explicit variable context. The language is deliberately narrow:
// arithmetic operators, comparisons and the min/max helpers, with no host
// access.
// Compiled expressions are cached in a bounded LRU with at-most-once
// compilation per distinct expression text; the cache is safe for concurrent
// readers.
type FormulaEvaluator struct {
	language gval.Language
	cache    *lru.Cache[string, gval.Evaluable]
	mu       sync.Mutex
	timeout  time.Duration
	logger   func(context.Context, string, map[string]any)
}

// FormulaEvaluatorDeps configures the evaluator.
type FormulaEvaluatorDeps struct {
	CacheSize int
	// Timeout is the context deadline attached to a single evaluation. The
	// arithmetic language does not poll the context mid-expression; the
	// expression length cap is what bounds evaluation work. The deadline
	// matters if the language ever grows functions that do observe it.
	Timeout time.Duration
	Logger  func(context.Context, string, map[string]any)
}

// NewFormulaEvaluator builds the evaluator with its restricted language.
func NewFormulaEvaluator(deps FormulaEvaluatorDeps) (*FormulaEvaluator, error) {
	size := deps.CacheSize
	if size <= 0 {
		size = defaultFormulaCacheSize
	}
	cache, err := lru.New[string, gval.Evaluable](size)
	if err != nil {
		return nil, fmt.Errorf("formula evaluator: %w", err)
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultFormulaTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	language := gval.NewLanguage(
		gval.Arithmetic(),
		gval.Function("min", func(arguments ...interface{}) (interface{}, error) {
			return pickNumber(arguments, func(best, candidate float64) bool { return candidate < best })
		}),
		gval.Function("max", func(arguments ...interface{}) (interface{}, error) {
			return pickNumber(arguments, func(best, candidate float64) bool { return candidate > best })
		}),
	)

	return &FormulaEvaluator{
		language: language,
		cache:    cache,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Evaluate runs an expression against the supplied variables. The boolean is
// false when the expression evaluated cleanly but produced a non-numeric
// result, in which case the caller leaves the price unchanged. A returned
// error means the evaluation itself failed and the remaining sequence must be
// aborted.
func (e *FormulaEvaluator) Evaluate(ctx context.Context, expression string, vars map[string]any) (float64, bool, error) {
	if len(expression) > maxFormulaLength {
		return 0, false, fmt.Errorf("compile expression: length %d exceeds maximum %d", len(expression), maxFormulaLength)
	}
	evaluable, err := e.compiled(expression)
	if err != nil {
		return 0, false, fmt.Errorf("compile %q: %w", expression, err)
	}

	evalCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	value, err := evaluable(evalCtx, vars)
	if err != nil {
		return 0, false, fmt.Errorf("evaluate %q: %w", expression, err)
	}

	number, ok := asFloat(value)
	if !ok {
		e.logger(ctx, "formula_non_numeric_result", map[string]any{
			"expression": expression,
			"resultType": fmt.Sprintf("%T", value),
		})
		return 0, false, nil
	}
	return number, true, nil
}

// compiled returns the cached evaluable for the expression, compiling at most
// once per distinct expression text.
func (e *FormulaEvaluator) compiled(expression string) (gval.Evaluable, error) {
	if evaluable, ok := e.cache.Get(expression); ok {
		return evaluable, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evaluable, ok := e.cache.Get(expression); ok {
		return evaluable, nil
	}
	evaluable, err := e.language.NewEvaluable(expression)
	if err != nil {
		return nil, err
	}
	e.cache.Add(expression, evaluable)
	return evaluable, nil
}

func pickNumber(arguments []interface{}, better func(best, candidate float64) bool) (interface{}, error) {
	if len(arguments) == 0 {
		return nil, fmt.Errorf("expected at least one argument")
	}
	best, ok := asFloat(arguments[0])
	if !ok {
		return nil, fmt.Errorf("argument 1 is not numeric")
	}
	for i, argument := range arguments[1:] {
		candidate, ok := asFloat(argument)
		if !ok {
			return nil, fmt.Errorf("argument %d is not numeric", i+2)
		}
		if better(best, candidate) {
			best = candidate
		}
	}
	return best, nil
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
