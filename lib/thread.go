package lib

/* thread.go contains functions useful for multi-threading. */

import (
	"runtime"

	"github.com/parcel-sim/parcel/lib/error"
)

// SetThreads caps the number of threads used by the process at n. n = -1
// uses every core on the node.
func SetThreads(n int) {
	if n == -1 {
		n = runtime.NumCPU()
	} else if n < 1 {
		error.External(
			"%d threads requested. Threads must either be positive or "+
				"-1, which uses the maximum number of threads per node.", n,
		)
	} else if n > runtime.NumCPU() {
		error.External(
			"%d threads requested, but your system only has %d cores "+
				"per node. If you want parcel to use the maximum number "+
				"of threads per node, set Threads = -1.",
			n, runtime.NumCPU(),
		)
	}

	runtime.GOMAXPROCS(n)
}
