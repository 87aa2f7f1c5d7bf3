package oidc

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// validateGroupsClaim reports whether expr is a usable JMESPath expression.
// An empty expression selects the built-in groups/memberof claims.
func validateGroupsClaim(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return fmt.Errorf("groups claim %q: %w", expr, err)
	}
	return nil
}

// searchGroups evaluates expr against raw claims. A string result is a single
// group; a list keeps its string members and skips everything else.
func searchGroups(expr string, claims map[string]any) ([]string, error) {
	res, err := jmespath.Search(expr, claims)
	if err != nil {
		return nil, fmt.Errorf("evaluate groups claim: %w", err)
	}
	switch v := res.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		return v, nil
	default:
		return nil, fmt.Errorf("groups claim resolved to %T, want string or list", res)
	}
}
