package assets

import (
	"errors"
	"fmt"
	"maps"
	"time"
)

var (
	ErrNoEvaluator = errors.New("assets: query evaluator not configured")
	// ErrQueryResult reports an expression that did not produce a bool.
	ErrQueryResult = errors.New("assets: query result is not a bool")
)

// QueryContext is the environment a query expression sees for one asset.
type QueryContext struct {
	Snapshot Snapshot
	// Props holds the decoded persisted properties keyed by member name.
	Props map[string]any
	Args  map[string]any
	Now   *time.Time
}

func (c QueryContext) withDefaults() QueryContext {
	if c.Now == nil {
		now := time.Now()
		c.Now = &now
	}
	if c.Props == nil {
		c.Props = map[string]any{}
	}
	if c.Args == nil {
		c.Args = map[string]any{}
	}
	return c
}

func (c QueryContext) timestamp() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return *c.Now
}

// label identifies the asset in errors and log lines.
func (c QueryContext) label() string {
	if c.Snapshot.FilePath != "" {
		return c.Snapshot.FilePath
	}
	if c.Snapshot.ID.IsNil() {
		return ""
	}
	return c.Snapshot.ID.String()
}

// environment is the variable set shared by every engine.
func (c QueryContext) environment() map[string]any {
	return map[string]any{
		"id":    c.Snapshot.ID.String(),
		"kind":  c.Snapshot.Kind.String(),
		"name":  c.Snapshot.Name,
		"path":  c.Snapshot.FilePath,
		"props": maps.Clone(c.Props),
		"now":   c.timestamp(),
		"args":  c.Args,
	}
}

// Evaluator runs query expressions against a single asset environment.
type Evaluator interface {
	Evaluate(ctx QueryContext, expression string) (any, error)
	Compile(expression string) (CompiledQuery, error)
}

// CompiledQuery is an expression compiled once and evaluated per asset.
type CompiledQuery interface {
	Evaluate(ctx QueryContext) (any, error)
}

// NewQueryContext decodes snapshot properties with the schema registered for
// the snapshot kind. Properties that fail to decode are left out.
func (t *Types) NewQueryContext(snapshot Snapshot) (QueryContext, error) {
	schema, err := t.mustLookup(snapshot.Kind)
	if err != nil {
		return QueryContext{}, err
	}
	props := make(map[string]any, len(snapshot.Properties))
	for _, member := range schema.PersistableMembers() {
		value, ok, err := snapshot.Property(member.Name, member.Type)
		if err != nil || !ok {
			continue
		}
		props[member.Name] = value.Native()
	}
	return QueryContext{Snapshot: snapshot, Props: props}, nil
}

func matchResult(engine, expression string, ctx QueryContext, result any) (bool, error) {
	matched, ok := result.(bool)
	if !ok {
		return false, wrapQueryError(engine, expression, ctx.label(), fmt.Errorf("%w: got %T", ErrQueryResult, result))
	}
	return matched, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*assets.exprEvaluator":
		return "expr"
	case "*assets.celEvaluator":
		return "cel"
	case "*assets.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
