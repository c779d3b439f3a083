package upstream

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// jsonPath fetches url and returns every string the expression selects.
// Non-string matches are skipped.
func (d *Discoverer) jsonPath(ctx context.Context, url, query string) ([]string, error) {
	expr, err := jp.ParseString(query)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidQuery, query, err)
	}

	body, err := d.get.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	doc, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	var versions []string
	for _, v := range expr.Get(doc) {
		if s, ok := v.(string); ok {
			versions = append(versions, s)
		}
	}
	return versions, nil
}
