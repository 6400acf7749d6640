package query

import (
	"encoding/json"
	"fmt"

	"github.com/notework/timekeeper/pkg/notion/wire"
)

// The service rejects compound filters nested more than two levels deep, so
// an over deep tree fails here instead of round tripping a validation_error.
const maxCompoundDepth = 2

// CompoundFilter combines filter expressions under the top level filter key.
// Use And and Or to combine terms, or Where to submit a single expression as
// a complete filter.
type CompoundFilter struct {
	operator string
	terms    []FilterExpression
}

func And(terms ...FilterExpression) *CompoundFilter {
	return &CompoundFilter{operator: "and", terms: terms}
}

func Or(terms ...FilterExpression) *CompoundFilter {
	return &CompoundFilter{operator: "or", terms: terms}
}

// Where wraps a single expression without adding an operator level.
func Where(expr FilterExpression) *CompoundFilter {
	return &CompoundFilter{terms: []FilterExpression{expr}}
}

func depthOf(expr FilterExpression) int {
	compound, ok := expr.(*CompoundFilter)
	if !ok {
		return 0
	}

	deepest := 0
	for _, term := range compound.terms {
		if d := depthOf(term); d > deepest {
			deepest = d
		}
	}

	if compound.operator == "" {
		return deepest
	}
	return deepest + 1
}

// Validate reports structural problems before the expression is serialized:
// an empty term list or operators nested beyond the service's depth limit.
func (f *CompoundFilter) Validate() error {
	if len(f.terms) == 0 {
		return fmt.Errorf("compound filters require at least one term")
	}

	if d := depthOf(f); d > maxCompoundDepth {
		return fmt.Errorf("compound filters may nest at most %d operator levels, not %d", maxCompoundDepth, d)
	}

	return nil
}

func (f *CompoundFilter) filterNode() any {
	if f.operator == "" {
		if len(f.terms) == 0 {
			return wire.NewObject()
		}
		return f.terms[0].filterNode()
	}

	nodes := make([]any, len(f.terms))
	for i, term := range f.terms {
		nodes[i] = term.filterNode()
	}

	obj := wire.NewObject()
	obj.SetArray(f.operator, nodes)
	return obj
}

// WireObject exposes the {"filter": ...} node so that wire.Payload can merge
// a filter with sort instructions into one query body.
func (f *CompoundFilter) WireObject() *wire.Object {
	obj := wire.NewObject()
	obj.Set("filter", compoundBody{f})
	return obj
}

func (f *CompoundFilter) MarshalJSON() ([]byte, error) {
	return f.WireObject().MarshalJSON()
}

// compoundBody defers validation to serialization time, where an error can
// still be returned, since expression constructors do not fail.
type compoundBody struct {
	filter *CompoundFilter
}

func (b compoundBody) MarshalJSON() ([]byte, error) {
	if err := b.filter.Validate(); err != nil {
		return nil, err
	}

	return json.Marshal(b.filter.filterNode())
}
