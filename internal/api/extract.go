package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Extractor pulls a collection out of a response envelope with a jq
// expression, e.g. ".data", ".users" or "[.data[]?[]]" for a mapping of
// category to items. The expression is compiled once.
type Extractor struct {
	expr string
	code *gojq.Code
}

func NewExtractor(expr string) (*Extractor, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = "."
	}
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse extract %q: %w", expr, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile extract %q: %w", expr, err)
	}
	return &Extractor{expr: expr, code: code}, nil
}

func (e *Extractor) String() string { return e.expr }

// Extract runs the expression over a decoded JSON document. A single array
// result is the collection; null means the shape is absent and yields an
// empty collection; a lone object is a collection of one; several results
// (".data[]") are collected in order.
func (e *Extractor) Extract(doc any) ([]any, error) {
	var results []any
	iter := e.code.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("extract %q: %w", e.expr, err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return []any{}, nil
	case 1:
		switch x := results[0].(type) {
		case nil:
			return []any{}, nil
		case []any:
			return x, nil
		case map[string]any:
			return []any{x}, nil
		default:
			return nil, fmt.Errorf("extract %q: got %T, want an array", e.expr, x)
		}
	}
	out := make([]any, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}
