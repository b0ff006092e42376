package extract

import (
	"fmt"
	"regexp"
	"strings"
)

var spaces = regexp.MustCompile(`\s{2,}`)

// cleaner compiles a list of cleaning ops into one function. Supported ops:
// upper, lower, trim, squeeze (collapse inner whitespace) and remove:<chars>.
func cleaner(ops []string) (func(string) string, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	steps := make([]func(string) string, 0, len(ops))
	for _, op := range ops {
		switch {
		case op == "upper":
			steps = append(steps, strings.ToUpper)
		case op == "lower":
			steps = append(steps, strings.ToLower)
		case op == "trim":
			steps = append(steps, strings.TrimSpace)
		case op == "squeeze":
			steps = append(steps, func(s string) string {
				return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
			})
		case strings.HasPrefix(op, "remove:"):
			chars := strings.TrimPrefix(op, "remove:")
			if chars == "" {
				return nil, fmt.Errorf("%w: clean op %q removes nothing", ErrMalformed, op)
			}
			steps = append(steps, func(s string) string {
				return strings.Map(func(r rune) rune {
					if strings.ContainsRune(chars, r) {
						return -1
					}
					return r
				}, s)
			})
		default:
			return nil, fmt.Errorf("%w: unknown clean op %q", ErrMalformed, op)
		}
	}

	return func(s string) string {
		for _, step := range steps {
			s = step(s)
		}
		return s
	}, nil
}
