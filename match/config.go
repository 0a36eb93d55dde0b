package match

import (
	"sync/atomic"

	"github.com/Comcast/shapes/util"
)

var experimentalWarnings atomic.Bool

func init() {
	experimentalWarnings.Store(true)
}

// SetExperimentalWarnings turns warnings about experimental features
// on or off for the whole process.
//
// The switch is read when a pattern (or a one-pattern operator) is
// built.  The value is stored with what's built, so changing the
// switch later doesn't affect patterns that already exist.
func SetExperimentalWarnings(on bool) {
	experimentalWarnings.Store(on)
}

// ExperimentalWarnings reports the current value of the switch.
func ExperimentalWarnings() bool {
	return experimentalWarnings.Load()
}

// WarnExperimental logs a warning about the given feature.
func WarnExperimental(feature string) {
	util.Logger.Warn().
		Str("feature", feature).
		Msg(feature + " is experimental, and the behavior may change in future versions")
}
