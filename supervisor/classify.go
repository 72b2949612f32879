package supervisor

import (
	"fmt"

	"github.com/13rac1/claudepod/internal/store"
	"github.com/13rac1/claudepod/stream"
)

// oomExitCode is what Linux reports for a memory-killed container.
const oomExitCode = 137

// classifyTerminal decides the terminal status for a finished container. A
// parser terminal signal outranks the exit code: a rate-limited run fails
// even when the container exited 0.
func classifyTerminal(exitCode int, signal stream.Event) (store.JobStatus, store.ErrorKind, string) {
	switch sig := signal.(type) {
	case stream.RateLimit:
		return store.JobStatusFailed, store.ErrorKindRateLimit, sig.Message()
	case stream.AuthError:
		kind := store.ErrorKindAuthFailed
		if sig.Kind == stream.AuthTokenExpired {
			kind = store.ErrorKindAuthTokenExpired
		}
		return store.JobStatusFailed, kind, sig.Message()
	}

	switch {
	case exitCode == oomExitCode:
		return store.JobStatusFailed, store.ErrorKindOOM, "container killed (exit 137, out of memory)"
	case exitCode != 0:
		return store.JobStatusFailed, store.ErrorKindCrash, fmt.Sprintf("container exited with code %d", exitCode)
	default:
		return store.JobStatusCompleted, "", ""
	}
}

// terminalSignal tracks the last rate-limit or auth signal seen on a
// stream. Overwrite-last-wins: only the final signal matters.
type terminalSignal struct {
	event stream.Event
}

// observe records terminal signals and ignores everything else.
func (t *terminalSignal) observe(event stream.Event) {
	switch event.(type) {
	case stream.RateLimit, stream.AuthError:
		t.event = event
	}
}
