package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Filter-expression syntax, shared with the Redis backend: whitespace
// separated clauses, each one of
//
//	term                 bare text, matched against the default text field
//	@field:value         text/tag exact or prefix (trailing *) match
//	@field:[low high]    inclusive numeric range; +inf/-inf allowed
//
// All clauses must hold (implicit AND). A single * matches everything.

type clauseKind int

const (
	clauseTerm clauseKind = iota
	clauseField
	clauseRange
)

type clause struct {
	kind  clauseKind
	field string
	value string
	low   float64
	high  float64
}

// parseFilter splits a filter expression into clauses.
func parseFilter(filter string) ([]clause, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrBadFilter)
	}
	if filter == "*" {
		return nil, nil
	}

	tokens := strings.Fields(filter)
	var clauses []clause

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if !strings.HasPrefix(tok, "@") {
			clauses = append(clauses, clause{kind: clauseTerm, value: tok})
			continue
		}

		name, rest, ok := strings.Cut(tok[1:], ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: clause %q", ErrBadFilter, tok)
		}

		if strings.HasPrefix(rest, "[") {
			// Ranges contain a space, so rejoin split tokens until the
			// closing bracket.
			for !strings.HasSuffix(rest, "]") {
				i++
				if i >= len(tokens) {
					return nil, fmt.Errorf("%w: unterminated range in %q", ErrBadFilter, filter)
				}
				rest += " " + tokens[i]
			}

			low, high, err := parseRange(rest)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause{kind: clauseRange, field: name, low: low, high: high})
			continue
		}

		if rest == "" {
			return nil, fmt.Errorf("%w: clause %q has no value", ErrBadFilter, tok)
		}
		clauses = append(clauses, clause{kind: clauseField, field: name, value: rest})
	}

	return clauses, nil
}

// parseRange parses "[low high]" with inf bounds.
func parseRange(s string) (float64, float64, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	parts := strings.Fields(inner)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: range %q", ErrBadFilter, s)
	}

	low, err := parseBound(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: range %q: %v", ErrBadFilter, s, err)
	}
	high, err := parseBound(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: range %q: %v", ErrBadFilter, s, err)
	}
	return low, high, nil
}

func parseBound(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "+inf", "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// matchText applies exact or prefix matching, case-insensitively.
func matchText(value, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return len(value) >= len(prefix) && strings.EqualFold(value[:len(prefix)], prefix)
	}
	return strings.EqualFold(value, pattern)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
