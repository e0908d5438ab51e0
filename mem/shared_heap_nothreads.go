//go:build nothreads

package mem

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Built with the nothreads tag the shared heap family does not exist: no
// stubs, no sentinels. Callers must gate on build configuration rather than
// probe at runtime.

func writeSharedStats(obj *jwriter.ObjectState) {
}
