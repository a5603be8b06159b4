package scrub

// resolveColumns maps a selector onto the current schema. It is a pure
// function of (selector, schema): no data values are consulted.
//
// Explicit selectors keep their declared order and fail on the first name
// absent from the schema. Pattern and All selectors yield names in schema
// order; an empty Pattern result is legal.
func resolveColumns(sel ColumnSelector, s Schema, rule string) ([]string, error) {
	switch {
	case len(sel.Columns) > 0:
		present := make(map[string]struct{}, len(s.Columns))
		for _, cs := range s.Columns {
			present[cs.Name] = struct{}{}
		}
		out := make([]string, 0, len(sel.Columns))
		for _, name := range sel.Columns {
			if _, ok := present[name]; !ok {
				return nil, &UnknownColumnError{Rule: rule, Column: name}
			}
			out = append(out, name)
		}
		return out, nil
	case sel.re != nil:
		var out []string
		for _, cs := range s.Columns {
			if sel.re.MatchString(cs.Name) {
				out = append(out, cs.Name)
			}
		}
		return out, nil
	default:
		return s.Names(), nil
	}
}
