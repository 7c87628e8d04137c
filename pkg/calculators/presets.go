package calculators

// Minimal returns a small set of parameterless calculators.
func Minimal() FCParameters {
	return FCParameters{
		"sum_values":         nil,
		"median":             nil,
		"mean":               nil,
		"length":             nil,
		"standard_deviation": nil,
		"variance":           nil,
		"maximum":            nil,
		"minimum":            nil,
	}
}

// Comprehensive returns every calculator of the default registry with its
// default parameter sets.
func Comprehensive() FCParameters {
	return ComprehensiveFor(Default())
}

// ComprehensiveFor returns every calculator of r with its default
// parameter sets.
func ComprehensiveFor(r *Registry) FCParameters {
	out := make(FCParameters)
	for _, name := range r.Names() {
		c, _ := r.Lookup(name)
		if !c.Parameterized() {
			out[name] = nil
			continue
		}
		list := make([]Params, len(c.Defaults))
		for i, p := range c.Defaults {
			list[i] = p.Clone()
		}
		out[name] = list
	}
	return out
}

// Preset resolves a preset by name.
func Preset(name string) (FCParameters, bool) {
	switch name {
	case "minimal":
		return Minimal(), true
	case "comprehensive":
		return Comprehensive(), true
	default:
		return nil, false
	}
}
