// Package assemble groups a token stream into table rows following a field
// schema. Both algorithms are local-repair heuristics: a candidate that fails
// validation is dropped and the cursor moves on by Tuning.Advance tokens.
package assemble

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind tells how a field consumes tokens.
type Kind int

const (
	// Fixed takes exactly one token, checked by the field predicate.
	Fixed Kind = iota
	// Variable accumulates tokens until the terminator field matches.
	Variable
	// Terminator ends a Variable field and keeps the matching token.
	Terminator
	// Trailing takes the next token after the terminator, empty when absent.
	Trailing
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Variable:
		return "variable"
	case Terminator:
		return "terminator"
	case Trailing:
		return "trailing"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Predicate checks the shape of a token.
type Predicate func(string) bool

// FullMatch returns a predicate accepting tokens that match re entirely.
func FullMatch(re *regexp.Regexp) Predicate {
	anchored := regexp.MustCompile(`^(?:` + re.String() + `)$`)
	return anchored.MatchString
}

// Field is one column of a schema. A nil Valid accepts any token. Clean, when
// set, rewrites the emitted value.
type Field struct {
	Name  string
	Kind  Kind
	Valid Predicate
	Clean func(string) string
}

// Tuning holds the per-source knobs of the repair heuristics.
type Tuning struct {
	// Advance is how far the cursor moves after a rejected candidate.
	Advance int
	// MaxFailures stops assembly after that many consecutive rejections.
	MaxFailures int
	// MiddleCap is the most tokens a Variable field may take.
	MiddleCap int
	// Joiner glues the tokens of a Variable field.
	Joiner string
}

// DefaultTuning is used for zero values in a schema's Tuning.
var DefaultTuning = Tuning{
	Advance:     1,
	MaxFailures: 40,
	MiddleCap:   12,
	Joiner:      " / ",
}

func (t Tuning) withDefaults() Tuning {
	if t.Advance <= 0 {
		t.Advance = DefaultTuning.Advance
	}
	if t.MaxFailures <= 0 {
		t.MaxFailures = DefaultTuning.MaxFailures
	}
	if t.MiddleCap <= 0 {
		t.MiddleCap = DefaultTuning.MiddleCap
	}
	if t.Joiner == "" {
		t.Joiner = DefaultTuning.Joiner
	}
	return t
}

// Schema describes a row layout. Stop, when set, ends assembly as soon as the
// first token of a candidate at a row boundary matches it (start of the next
// section).
type Schema struct {
	Fields []Field
	Stop   Predicate
	Tuning Tuning
}

// ErrInvalidSchema reports an inconsistent schema.
var ErrInvalidSchema = errors.New("invalid schema")

// Validate checks the schema layout: unique non-empty names, at most one
// Variable field directly followed by a Terminator with a predicate, and only
// Trailing fields after the Terminator.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}

	seen := make(map[string]bool, len(s.Fields))
	variable := -1
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true

		switch f.Kind {
		case Fixed:
			if variable >= 0 {
				return fmt.Errorf("%w: fixed field %q after variable field", ErrInvalidSchema, f.Name)
			}
		case Variable:
			if variable >= 0 {
				return fmt.Errorf("%w: more than one variable field", ErrInvalidSchema)
			}
			variable = i
			if i+1 >= len(s.Fields) || s.Fields[i+1].Kind != Terminator {
				return fmt.Errorf("%w: variable field %q has no terminator", ErrInvalidSchema, f.Name)
			}
		case Terminator:
			if variable != i-1 {
				return fmt.Errorf("%w: terminator %q does not follow a variable field", ErrInvalidSchema, f.Name)
			}
			if f.Valid == nil {
				return fmt.Errorf("%w: terminator %q has no predicate", ErrInvalidSchema, f.Name)
			}
		case Trailing:
			if variable < 0 {
				return fmt.Errorf("%w: trailing field %q without variable field", ErrInvalidSchema, f.Name)
			}
		default:
			return fmt.Errorf("%w: field %q has unknown kind %s", ErrInvalidSchema, f.Name, f.Kind)
		}
	}
	return nil
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s Schema) hasVariable() bool {
	for _, f := range s.Fields {
		if f.Kind == Variable {
			return true
		}
	}
	return false
}

func (f Field) accepts(token string) bool {
	return f.Valid == nil || f.Valid(token)
}

func (f Field) value(token string) string {
	if f.Clean == nil {
		return token
	}
	return f.Clean(token)
}
