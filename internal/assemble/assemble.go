package assemble

import "strings"

// Row holds one assembled record, values aligned with Schema.Names().
type Row []string

// Assemble picks the algorithm from the schema shape: VariableMiddle when a
// Variable field exists, FixedStride otherwise.
func Assemble(tokens []string, s Schema) []Row {
	if s.hasVariable() {
		return VariableMiddle(tokens, s)
	}
	return FixedStride(tokens, s)
}

// FixedStride reads records of len(s.Fields) tokens each. A misaligned
// candidate is discarded and the window slides by Tuning.Advance to
// resynchronize on the next valid row. Stop is only checked at row
// boundaries, never while resynchronizing.
func FixedStride(tokens []string, s Schema) []Row {
	t := s.Tuning.withDefaults()
	n := len(s.Fields)
	if n == 0 {
		return nil
	}

	var rows []Row
	failures := 0
	for i := 0; i+n <= len(tokens); {
		candidate := tokens[i : i+n]
		if failures == 0 && s.Stop != nil && s.Stop(candidate[0]) {
			break
		}

		if !s.validFixed(candidate) {
			failures++
			if failures > t.MaxFailures {
				break
			}
			i += t.Advance
			continue
		}
		failures = 0

		row := make(Row, n)
		for k, f := range s.Fields {
			row[k] = f.value(candidate[k])
		}
		rows = append(rows, row)
		i += n
	}
	return rows
}

// VariableMiddle reads records made of fixed leading fields, a Variable field
// running until the Terminator predicate matches, and Trailing fields. A
// Variable field growing past Tuning.MiddleCap means the cursor drifted out
// of the table: the candidate is abandoned and the cursor advances. As in
// FixedStride, Stop applies at row boundaries only.
func VariableMiddle(tokens []string, s Schema) []Row {
	t := s.Tuning.withDefaults()

	lead, variable := 0, -1
	for k, f := range s.Fields {
		if f.Kind == Variable {
			variable = k
			break
		}
		lead++
	}
	if variable < 0 || variable+1 >= len(s.Fields) {
		return nil
	}
	terminator := s.Fields[variable+1]
	trailing := s.Fields[variable+2:]

	var rows []Row
	failures := 0
	fail := func(i *int) bool {
		failures++
		*i += t.Advance
		return failures > t.MaxFailures
	}

	for i := 0; i < len(tokens); {
		if i+lead > len(tokens) {
			break
		}
		candidate := tokens[i : i+lead]
		if failures == 0 && lead > 0 && s.Stop != nil && s.Stop(candidate[0]) {
			break
		}
		if !s.validFixed(candidate) {
			if fail(&i) {
				break
			}
			continue
		}

		j := i + lead
		var middle []string
		term, found := "", false
		for j < len(tokens) {
			tok := tokens[j]
			j++
			if terminator.accepts(tok) {
				term, found = tok, true
				break
			}
			middle = append(middle, tok)
			if len(middle) > t.MiddleCap {
				break
			}
		}
		if !found {
			if fail(&i) {
				break
			}
			continue
		}
		failures = 0

		row := make(Row, 0, len(s.Fields))
		for k, f := range s.Fields[:lead] {
			row = append(row, f.value(candidate[k]))
		}
		row = append(row, s.Fields[variable].value(strings.Join(middle, t.Joiner)))
		row = append(row, terminator.value(term))
		for _, f := range trailing {
			v := ""
			if j < len(tokens) {
				v = tokens[j]
			}
			j++
			row = append(row, f.value(v))
		}
		rows = append(rows, row)
		i = j
	}
	return rows
}

// validFixed checks the leading Fixed fields against candidate tokens.
func (s Schema) validFixed(candidate []string) bool {
	for k, tok := range candidate {
		f := s.Fields[k]
		if f.Kind != Fixed {
			return true
		}
		if !f.accepts(tok) {
			return false
		}
	}
	return true
}
