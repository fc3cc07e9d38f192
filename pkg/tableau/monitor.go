package tableau

// ProgressMonitor is the classification progress-reporting plug-in
// (spec §6). The taxonomy builder (C13) calls these around the
// classification loop; a nil monitor is treated as the no-op
// implementation below.
type ProgressMonitor interface {
	SetClassificationStarted(nItems int)
	NextProcessed(entry string)
	IsCancelled() bool
	SetFinished()
}

type noopMonitor struct{}

func (noopMonitor) SetClassificationStarted(int) {}
func (noopMonitor) NextProcessed(string)         {}
func (noopMonitor) IsCancelled() bool            { return false }
func (noopMonitor) SetFinished()                 {}
