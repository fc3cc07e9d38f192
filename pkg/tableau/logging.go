package tableau

import "go.uber.org/zap"

// newLogger returns a *zap.SugaredLogger: a no-op logger by default, or
// development-mode (human-readable, debug level) output when verbose is
// set. Matches SPEC_FULL.md §3's ambient-stack decision to wire zap —
// the teacher itself logs ad hoc, but the rest of the retrieval pack
// (theRebelliousNerd-codenerd) settles on zap for a reasoning/service
// core, so that's what Reasoner uses. It logs lifecycle events
// (creation, freeze, being marked failed, consistency result); rule
// firing, backjumps and blocking decisions are not traced.
func newLogger(verbose bool) *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}
