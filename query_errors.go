package assets

import (
	"errors"
	"fmt"
	"strings"
)

// QueryError captures evaluator metadata alongside the originating error.
type QueryError struct {
	Engine string
	Expr   string
	Asset  string
	Err    error
}

func (e *QueryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("assets: %s query %s asset=%s: %v", e.Engine, describeExpression(e.Expr), e.Asset, e.Err)
}

func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "assets:") {
		return err
	}
	return fmt.Errorf("assets: %s query: %w", engine, err)
}

func wrapQueryError(engine, expr, asset string, err error) error {
	if err == nil {
		return nil
	}

	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		if queryErr.Engine == "" {
			queryErr.Engine = engine
		}
		if queryErr.Expr == "" {
			queryErr.Expr = expr
		}
		if queryErr.Asset == "" {
			queryErr.Asset = asset
		}
		return queryErr
	}

	return &QueryError{
		Engine: engine,
		Expr:   expr,
		Asset:  asset,
		Err:    err,
	}
}
