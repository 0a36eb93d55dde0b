package match

// UnknownPatternType is an error that includes the thing that's
// causing the trouble.
type UnknownPatternType struct {
	Pattern interface{}
}

func (e *UnknownPatternType) Error() string {
	return "unknown pattern type"
}

// PatternConstructionError reports a pattern that can't be built.
//
// These errors happen when a pattern is constructed and never when a
// pattern is matched.
type PatternConstructionError struct {
	Reason string

	// Pattern is the offending (sub)pattern, if there is one.
	Pattern Pattern
}

func (e *PatternConstructionError) Error() string {
	if e.Pattern == nil {
		return "bad pattern: " + e.Reason
	}
	return "bad pattern: " + e.Reason + " in " + e.Pattern.String()
}
