package bramble

import "time"

// frameStats holds per-frame timing and call counts.
// Only logged when the runtime is in debug mode.
type frameStats struct {
	systemTime    time.Duration
	sortTime      time.Duration
	immediateTime time.Duration
	deferredTime  time.Duration
	entityCount   int
	systemCalls   int
	updateCalls   int
	renderCalls   int
	errorCount    int
}

func (st frameStats) total() time.Duration {
	return st.systemTime + st.sortTime + st.immediateTime + st.deferredTime
}

// debugLog writes the stats of the frame that just finished.
func (r *Runtime) debugLog(st frameStats) {
	if !r.debug {
		return
	}
	r.log.Debug("frame",
		"frame", r.frames,
		"systems", st.systemTime,
		"sort", st.sortTime,
		"immediate", st.immediateTime,
		"deferred", st.deferredTime,
		"total", st.total(),
		"entities", st.entityCount,
		"system_calls", st.systemCalls,
		"update_calls", st.updateCalls,
		"render_calls", st.renderCalls,
		"errors", st.errorCount)
}

// debugMaxEntityCount is the live-entity count above which debug mode warns
// once per frame.
const debugMaxEntityCount = 10000

func (r *Runtime) debugCheckEntityCount(n int) {
	if r.debug && n > debugMaxEntityCount {
		r.log.Warn("entity count exceeds threshold", "entities", n, "threshold", debugMaxEntityCount)
	}
}
