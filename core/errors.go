package core

// These errors are user errors, not internal errors.

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoPattern is the Err of a BadClause for a Case clause that has
// no pattern.
var ErrNoPattern = errors.New("clause has no pattern")

// NoMatchingPattern occurs when no clause of a Case matches the
// subject and the Case has no Else.  A Destructure that fails also
// returns this error.
type NoMatchingPattern struct {
	Subject interface{}
}

func (e *NoMatchingPattern) Error() string {
	return "no matching pattern for " + render(e.Subject)
}

// render tries JSON and falls back to %#v.
func render(x interface{}) string {
	js, err := json.Marshal(x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}

// CaseNotCompiled occurs when a CaseSpec's compiled Case is requested
// before the CaseSpec has been Compile()ed.
type CaseNotCompiled struct {
	Spec *CaseSpec
}

func (e *CaseNotCompiled) Error() string {
	return `case "` + e.Spec.Name + `" not compiled`
}

// BadClause occurs when a clause of a CaseSpec can't be compiled, or
// when a Case has a clause without a pattern.  Spec is nil in the
// second case.
type BadClause struct {
	Spec  *CaseSpec
	Index int
	Err   error
}

func (e *BadClause) Error() string {
	clause := "else"
	if 0 <= e.Index {
		clause = fmt.Sprintf("clause %d", e.Index)
	}
	if e.Spec == nil {
		return clause + ": " + e.Err.Error()
	}
	return clause + ` in case "` + e.Spec.Name + `": ` + e.Err.Error()
}

func (e *BadClause) Unwrap() error {
	return e.Err
}
