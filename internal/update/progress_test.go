package update

import "testing"

// The tracker channel holds exactly one pending snapshot; publishing with
// nobody reading replaces the slot instead of blocking.
func TestTrackerLatestValueWins(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	for i := 1; i <= 100; i++ {
		tr.publish(Progress{Phase: PhaseDownloading, BytesDownloaded: int64(i)})
	}

	p := <-tr.Updates()
	if p.BytesDownloaded != 100 {
		t.Fatalf("BytesDownloaded = %d, want 100 (latest)", p.BytesDownloaded)
	}

	select {
	case extra := <-tr.Updates():
		t.Fatalf("unexpected second snapshot %+v", extra)
	default:
	}
}

func TestTrackerCloseEndsStream(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.publish(Progress{Phase: PhaseComplete})
	tr.close()

	got := drainTracker(tr)
	if len(got) != 1 || got[0].Phase != PhaseComplete {
		t.Fatalf("snapshots = %+v, want single Complete", got)
	}
}

func TestPhaseStrings(t *testing.T) {
	t.Parallel()

	phases := []Phase{
		PhaseIdle, PhaseDownloading, PhaseArchiving, PhaseExtracting,
		PhaseRestoring, PhaseRollingBack, PhaseComplete, PhaseFailed,
	}
	seen := map[string]bool{}
	for _, p := range phases {
		s := p.String()
		if s == "" || s == "Unknown" {
			t.Fatalf("Phase(%d).String() = %q", p, s)
		}
		if seen[s] {
			t.Fatalf("duplicate phase string %q", s)
		}
		seen[s] = true
	}
}

func TestProgressFractions(t *testing.T) {
	t.Parallel()

	p := Progress{BytesDownloaded: 50, TotalBytes: 200, FilesDone: 3, FilesTotal: 4}
	if got := p.DownloadFraction(); got != 0.25 {
		t.Fatalf("DownloadFraction() = %v, want 0.25", got)
	}
	if got := p.ExtractFraction(); got != 0.75 {
		t.Fatalf("ExtractFraction() = %v, want 0.75", got)
	}

	var zero Progress
	if zero.DownloadFraction() != 0 || zero.ExtractFraction() != 0 {
		t.Fatal("zero totals must yield zero fractions")
	}
}
