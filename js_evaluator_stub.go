//go:build !js_eval

package assets

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil.
func NewJSEvaluator(...JSEvaluatorOption) Evaluator {
	return nil
}
