package core

import (
	"context"

	"github.com/Comcast/shapes/match"
)

// Destructure is a one-pattern Case without guards or an else:
// either the pattern matches and its bindings go into the scope, or
// the result is *NoMatchingPattern.
type Destructure struct {
	Pattern match.Pattern

	// Matcher defaults to match.DefaultMatcher.
	Matcher *match.Matcher

	// Warn records whether experimental warnings were on when
	// this Destructure was made.
	Warn bool
}

// NewDestructure makes a Destructure.
//
// The one-pattern form is experimental, so a warning is logged if
// match.ExperimentalWarnings() is on.
func NewDestructure(p match.Pattern) *Destructure {
	d := &Destructure{
		Pattern: p,
		Warn:    match.ExperimentalWarnings(),
	}
	if d.Warn {
		match.WarnExperimental("one-line pattern matching")
	}
	return d
}

func (d *Destructure) matcher() *match.Matcher {
	if d.Matcher == nil {
		return match.DefaultMatcher
	}
	return d.Matcher
}

// Bind matches the subject and splices the bindings into the scope
// (which can be nil).
//
// Returns *NoMatchingPattern when the pattern doesn't match, and the
// scope is then left alone.
func (d *Destructure) Bind(ctx context.Context, subject interface{}, scope *match.Bindings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bs := match.NewBindings()
	matched, err := d.matcher().Attempt(d.Pattern, subject, bs)
	if err != nil {
		return err
	}
	if !matched {
		return &NoMatchingPattern{Subject: subject}
	}
	if scope != nil {
		bs.Splice(scope)
	}
	return nil
}

// Test is Bind that reports a failed match as false instead of an
// error.
func (d *Destructure) Test(subject interface{}, scope *match.Bindings) (bool, error) {
	bs := match.NewBindings()
	matched, err := d.matcher().Attempt(d.Pattern, subject, bs)
	if err != nil || !matched {
		return false, err
	}
	if scope != nil {
		bs.Splice(scope)
	}
	return true, nil
}
