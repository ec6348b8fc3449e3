package documents

import (
	"fmt"
	"reflect"

	"github.com/cbroglie/mustache"
)

// Renderer turns a logic-less HTML template and a context tree into a
// finished HTML string. The template language is restricted to two token
// forms: {{path.to.value}} substitution and {{#path}}...{{/path}}
// conditional/repeated sections. There is no expression evaluation; this
// is a deliberate boundary because substituted values come from untrusted
// customer and company free-text fields.
//
// Substituted values are HTML-escaped. Unresolved or nil paths render as
// empty strings. Section values behave as follows: an array renders the
// block once per element with the element as the lookup context, any other
// truthy value renders the block once, and falsy or empty-array values
// suppress the block entirely. Sections nest to arbitrary depth.
type Renderer struct{}

// NewRenderer constructs a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render executes tpl against context. Malformed token nesting, such as an
// unmatched {{#x}} opener, fails with ErrRender.
func (r *Renderer) Render(tpl string, context map[string]any) (string, error) {
	parsed, err := mustache.ParseString(tpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	out, err := parsed.Render(pruneNils(context))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return out, nil
}

// pruneNils strips nil values, typed or untyped, from the context tree.
// The template engine substitutes a reachable nil as the literal "<nil>",
// while an absent key substitutes as an empty string; dropping the keys
// makes nil and missing indistinguishable to the template.
func pruneNils(context map[string]any) map[string]any {
	clean := make(map[string]any, len(context))
	for key, value := range context {
		if isNilValue(value) {
			continue
		}
		clean[key] = pruneValue(value)
	}
	return clean
}

func pruneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return pruneNils(v)
	case []map[string]any:
		items := make([]map[string]any, 0, len(v))
		for _, item := range v {
			items = append(items, pruneNils(item))
		}
		return items
	case []any:
		items := make([]any, 0, len(v))
		for _, item := range v {
			if isNilValue(item) {
				continue
			}
			items = append(items, pruneValue(item))
		}
		return items
	default:
		return value
	}
}

func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
