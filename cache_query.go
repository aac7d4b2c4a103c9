package assets

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Query returns the loaded assets whose environment satisfies expression,
// sorted by path. The expression sees id, kind, name, path, props and now.
func (c *Cache) Query(ctx context.Context, expression string) ([]Asset, error) {
	return c.QueryWith(ctx, expression, nil)
}

// QueryWith is Query with caller supplied args exposed as args.
func (c *Cache) QueryWith(ctx context.Context, expression string, args map[string]any) ([]Asset, error) {
	if expression == "" {
		return nil, fmt.Errorf("assets: query expression must not be empty")
	}
	evaluator, err := c.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	matches, scanned, queryErr := c.runQuery(ctx, evaluator, engine, expression, args)
	c.cfg.queryLogger.LogQuery(QueryLogEvent{
		Engine:   engine,
		Expr:     expression,
		Scanned:  scanned,
		Matched:  len(matches),
		Duration: time.Since(start),
		Err:      queryErr,
	})
	if queryErr != nil {
		return nil, queryErr
	}
	return matches, nil
}

func (c *Cache) runQuery(ctx context.Context, evaluator Evaluator, engine, expression string, args map[string]any) ([]Asset, int, error) {
	compiled, err := evaluator.Compile(expression)
	if err != nil {
		return nil, 0, wrapQueryError(engine, expression, "", err)
	}
	now := time.Now()
	candidates := c.sortedAssets()
	var matches []Asset
	for i, asset := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, i, err
		}
		snapshot, err := c.cfg.types.Snapshot(asset)
		if err != nil {
			return nil, i, err
		}
		qctx, err := c.cfg.types.NewQueryContext(snapshot)
		if err != nil {
			return nil, i, err
		}
		qctx.Args = args
		qctx.Now = &now
		result, err := compiled.Evaluate(qctx)
		if err != nil {
			return nil, i + 1, wrapQueryError(engine, expression, qctx.label(), err)
		}
		matched, err := matchResult(engine, expression, qctx, result)
		if err != nil {
			return nil, i + 1, err
		}
		if matched {
			matches = append(matches, asset)
		}
	}
	return matches, len(candidates), nil
}

func (c *Cache) sortedAssets() []Asset {
	c.mu.RLock()
	out := make([]Asset, 0, len(c.assets))
	for _, asset := range c.assets {
		out = append(out, asset)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b Asset) int {
		if n := strings.Compare(pathKey(a.FilePath()), pathKey(b.FilePath())); n != 0 {
			return n
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return out
}

func (c *Cache) resolveEvaluator() (Evaluator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.functionErr != nil {
		return nil, fmt.Errorf("assets: query functions: %w", c.cfg.functionErr)
	}
	if c.cfg.evaluator != nil {
		return c.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if c.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(c.cfg.programCache))
	}
	if c.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(c.cfg.functions))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	c.cfg.evaluator = evaluator
	return evaluator, nil
}
