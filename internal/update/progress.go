package update

// Phase identifies where the pipeline currently is. Complete and Failed are
// terminal; a new update starts a fresh pipeline.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDownloading
	PhaseArchiving
	PhaseExtracting
	PhaseRestoring
	PhaseRollingBack
	PhaseComplete
	PhaseFailed
)

// String returns a human-readable description of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Ready"
	case PhaseDownloading:
		return "Downloading update"
	case PhaseArchiving:
		return "Archiving current installation"
	case PhaseExtracting:
		return "Extracting new version"
	case PhaseRestoring:
		return "Restoring user data"
	case PhaseRollingBack:
		return "Rolling back to previous version"
	case PhaseComplete:
		return "Update complete"
	case PhaseFailed:
		return "Update failed"
	default:
		return "Unknown"
	}
}

// Progress is a snapshot of pipeline state. Values are monotonically
// non-decreasing within a phase and reset at phase boundaries.
type Progress struct {
	Phase           Phase
	BytesDownloaded int64
	TotalBytes      int64
	BytesPerSec     int64
	FilesDone       int
	FilesTotal      int
	CurrentFile     string
}

// DownloadFraction returns download completion in [0, 1].
func (p Progress) DownloadFraction() float64 {
	if p.TotalBytes == 0 {
		return 0
	}
	return float64(p.BytesDownloaded) / float64(p.TotalBytes)
}

// ExtractFraction returns extraction completion in [0, 1].
func (p Progress) ExtractFraction() float64 {
	if p.FilesTotal == 0 {
		return 0
	}
	return float64(p.FilesDone) / float64(p.FilesTotal)
}

// Tracker publishes progress through a single-slot, latest-value-wins
// channel. A slow consumer only ever sees the most recent snapshot;
// intermediate values may be dropped. Progress is a monitoring signal,
// not a completion notification - completion is the pipeline result.
type Tracker struct {
	ch chan Progress
}

// NewTracker returns a tracker whose channel holds at most one pending
// snapshot.
func NewTracker() *Tracker {
	return &Tracker{ch: make(chan Progress, 1)}
}

// Updates returns the channel consumers read snapshots from. The channel is
// closed when the pipeline finishes.
func (t *Tracker) Updates() <-chan Progress {
	return t.ch
}

// publish replaces any unconsumed snapshot with p.
func (t *Tracker) publish(p Progress) {
	for {
		select {
		case t.ch <- p:
			return
		default:
			select {
			case <-t.ch:
			default:
			}
		}
	}
}

// close marks the end of the progress stream.
func (t *Tracker) close() {
	close(t.ch)
}
