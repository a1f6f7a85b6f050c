package sales

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Predicate is one node of a filter over Sale records. The set of
// implementations is closed: Equals, InSet, Range, SubstringMatch, And and Or.
// Stores translate predicates into their native query form; Match evaluates
// them in memory.
type Predicate interface {
	fmt.Stringer
	predicate()
}

// Equals matches records whose Field equals Value. For list fields it matches
// when any element equals Value.
type Equals struct {
	Field Field
	Value any
}

// InSet matches records whose Field is one of Values. For list fields it
// matches when the record's list intersects Values.
type InSet struct {
	Field  Field
	Values []string
}

// Range matches records whose Field lies within [Min, Max]. A nil bound is
// open.
type Range struct {
	Field Field
	Min   any
	Max   any
}

// SubstringMatch matches records whose Field contains Substring, ignoring
// case. The substring is literal; no character has wildcard meaning.
type SubstringMatch struct {
	Field     Field
	Substring string
}

// And matches when every child matches. An empty And matches everything.
type And struct {
	Predicates []Predicate
}

// Or matches when at least one child matches. An empty Or matches nothing.
type Or struct {
	Predicates []Predicate
}

func (Equals) predicate()         {}
func (InSet) predicate()          {}
func (Range) predicate()          {}
func (SubstringMatch) predicate() {}
func (And) predicate()            {}
func (Or) predicate()             {}

func (p Equals) String() string {
	return fmt.Sprintf("%s = %s", p.Field, formatValue(p.Value))
}

func (p InSet) String() string {
	return fmt.Sprintf("%s in %q", p.Field, p.Values)
}

func (p Range) String() string {
	return fmt.Sprintf("%s in [%s, %s]", p.Field, formatBound(p.Min), formatBound(p.Max))
}

func (p SubstringMatch) String() string {
	return fmt.Sprintf("%s contains %q", p.Field, p.Substring)
}

func (p And) String() string {
	if len(p.Predicates) == 0 {
		return "true"
	}
	return joinPredicates(p.Predicates, " AND ")
}

func (p Or) String() string {
	if len(p.Predicates) == 0 {
		return "false"
	}
	return joinPredicates(p.Predicates, " OR ")
}

func joinPredicates(ps []Predicate, sep string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func formatBound(v any) string {
	if v == nil {
		return "*"
	}
	return formatValue(v)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case decimal.Decimal:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Match reports whether s satisfies p.
func Match(p Predicate, s *Sale) bool {
	switch p := p.(type) {
	case And:
		for _, c := range p.Predicates {
			if !Match(c, s) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range p.Predicates {
			if Match(c, s) {
				return true
			}
		}
		return false
	case Equals:
		v := s.Value(p.Field)
		if list, ok := v.([]string); ok {
			want, _ := p.Value.(string)
			return slices.Contains(list, want)
		}
		return compareValues(v, p.Value) == 0
	case InSet:
		v := s.Value(p.Field)
		if list, ok := v.([]string); ok {
			for _, item := range list {
				if slices.Contains(p.Values, item) {
					return true
				}
			}
			return false
		}
		str, _ := v.(string)
		return slices.Contains(p.Values, str)
	case Range:
		v := s.Value(p.Field)
		if p.Min != nil && compareValues(v, p.Min) < 0 {
			return false
		}
		if p.Max != nil && compareValues(v, p.Max) > 0 {
			return false
		}
		return true
	case SubstringMatch:
		str, _ := s.Value(p.Field).(string)
		return strings.Contains(strings.ToLower(str), strings.ToLower(p.Substring))
	}
	return false
}
